package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the verified claims of an access token issued by the identity provider.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService verifies access tokens. Issuing tokens belongs to the identity provider.
type TokenService interface {
	// ValidateToken checks the signature and expiry of tokenString and resolves the user ID from its subject.
	ValidateToken(tokenString string) (*Claims, error)
}
