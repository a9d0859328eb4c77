package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT claim set accepted by the API.
// The subject claim is the workspace owner.
type UserClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"` // "anon" tokens are rejected
}

// GetOwner returns the owner id from the subject claim
func (c *UserClaims) GetOwner() string {
	return c.Subject
}
