package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// keyVerifier checks tokens against a key source and an algorithm allow-list
type keyVerifier struct {
	keyfunc    jwt.Keyfunc
	algorithms []string
	logger     *slog.Logger
}

// NewJWTVerifier creates a verifier backed by a JWKS endpoint when jwksURL is
// set, otherwise by the shared HS256 secret. One of them is required.
// The JWKS keys are cached and refreshed by keyfunc.
func NewJWTVerifier(jwksURL, secret string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL != "" {
		jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS client: %w", err)
		}
		logger.Info("JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)
		return &keyVerifier{
			keyfunc:    jwks.Keyfunc,
			algorithms: []string{"RS256", "ES256"},
			logger:     logger,
		}, nil
	}

	if secret == "" {
		return nil, errors.New("either JWKS_URL or JWT_SECRET must be set")
	}
	logger.Warn("JWT verifier using shared secret (HS256)")
	return NewHMACVerifier([]byte(secret), logger), nil
}

// NewHMACVerifier verifies HS256 tokens signed with secret
func NewHMACVerifier(secret []byte, logger *slog.Logger) JWTVerifier {
	return &keyVerifier{
		keyfunc: func(*jwt.Token) (interface{}, error) {
			return secret, nil
		},
		algorithms: []string{"HS256"},
		logger:     logger,
	}
}

// VerifyToken validates a JWT and returns its claims
func (v *keyVerifier) VerifyToken(tokenString string) (*models.UserClaims, error) {
	// WithValidMethods prevents algorithm confusion between key types
	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, v.keyfunc,
		jwt.WithValidMethods(v.algorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	if claims.Role == "anon" {
		v.logger.Warn("anonymous token rejected", "subject", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc manages its own refresh goroutine lifetime
func (v *keyVerifier) Close() error {
	return nil
}
