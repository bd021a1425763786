package repository

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository defines user persistence. Lookups return domainerrors.ErrUserNotFound when missing.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, opts ListOptions) ([]*entity.User, int64, error)
}
