package repository

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// CartRepository defines cart persistence. Rows are unique per (user, product).
type CartRepository interface {
	// AddOrIncrement creates the row or adds amount to the existing one.
	AddOrIncrement(ctx context.Context, userID, productID uuid.UUID, amount int) (*entity.CartItem, error)
	SetAmount(ctx context.Context, userID, productID uuid.UUID, amount int) (*entity.CartItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	// ListByUser returns the cart rows with products loaded, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CartItem, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}

// FavoriteRepository defines favorites persistence. Rows are unique per (user, product).
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *entity.Favorite) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Favorite, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}

// AddressRepository defines address persistence. Every lookup is scoped to the owner.
type AddressRepository interface {
	Create(ctx context.Context, address *entity.Address) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error)
	Update(ctx context.Context, address *entity.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
