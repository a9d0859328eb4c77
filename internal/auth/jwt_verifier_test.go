package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.UserClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return token
}

func claimsFor(subject string, expiresIn time.Duration) models.UserClaims {
	return models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func TestHMACVerifier(t *testing.T) {
	verifier := NewHMACVerifier(testSecret, slog.New(slog.NewTextHandler(io.Discard, nil)))

	anon := claimsFor("user-1", time.Hour)
	anon.Role = "anon"

	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, testSecret, claimsFor("user-1", time.Hour)), "user-1"},
		{"expired", sign(t, jwt.SigningMethodHS256, testSecret, claimsFor("user-1", -time.Hour)), ""},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor("user-1", time.Hour)), ""},
		{"no subject", sign(t, jwt.SigningMethodHS256, testSecret, claimsFor("", time.Hour)), ""},
		{"anonymous", sign(t, jwt.SigningMethodHS256, testSecret, anon), ""},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, testSecret, claimsFor("user-1", time.Hour)), ""},
		{"garbage", "not-a-token", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantSub == "" {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Errorf("got %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken: %v", err)
			}
			if claims.GetOwner() != tt.wantSub {
				t.Errorf("owner = %q", claims.GetOwner())
			}
		})
	}
}

func TestNewJWTVerifier_RequiresKeySource(t *testing.T) {
	if _, err := NewJWTVerifier("", "", slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("expected error without JWKS URL or secret")
	}
}
