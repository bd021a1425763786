package usecase

import (
	"context"

	"fireworks/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput defines the data required for a staff member to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// TokenOutput returns the generated tokens after a successful login or refresh.
type TokenOutput struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // Access token lifetime in seconds.
	User         *entity.User
}

// AuthUsecase defines authentication operations.
type AuthUsecase interface {
	// Login accepts email and password of staff accounts only.
	Login(ctx context.Context, input LoginInput) (*TokenOutput, error)
	// LoginTelegram accepts a Telegram Login Widget payload and upserts the customer.
	LoginTelegram(ctx context.Context, fields map[string]string) (*TokenOutput, error)
	// Refresh issues a new access token for a cached refresh token.
	Refresh(ctx context.Context, refreshToken string) (*TokenOutput, error)
	Logout(ctx context.Context, refreshToken string) error
}
