// Package service defines interfaces for core, stateless domain logic and outbound integrations.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by access tokens.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	Roles  []string  `json:"roles,omitempty"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed access tokens.
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID, roles []string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	AccessTokenTTL() time.Duration
	// NewRefreshToken returns an opaque random token value.
	NewRefreshToken() (string, error)
}
