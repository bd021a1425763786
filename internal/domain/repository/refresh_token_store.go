package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore keeps opaque refresh tokens in a key-value cache, token value to user id.
type RefreshTokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// Find returns domainerrors.ErrRefreshTokenInvalid when the token is unknown or expired.
	Find(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}
