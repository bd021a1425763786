package usecase

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// AddressInput is the writable part of a delivery address.
type AddressInput struct {
	Label       string
	FullAddress string
	Comment     string
}

// --- Output DTOs ---

// CartOutput is the cart with current product prices.
type CartOutput struct {
	Items []*entity.CartItem
	Total decimal.Decimal
}

// CartUsecase defines shopping cart operations. Every call is scoped to the owner.
type CartUsecase interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartOutput, error)
	// AddItem puts the product into the cart or increases the amount already there.
	AddItem(ctx context.Context, userID, productID uuid.UUID, amount int) (*CartOutput, error)
	SetAmount(ctx context.Context, userID, productID uuid.UUID, amount int) (*CartOutput, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartOutput, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// FavoriteUsecase defines favorites operations.
type FavoriteUsecase interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entity.Favorite, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*entity.Favorite, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	// Toggle adds the product when absent and removes it otherwise. It reports whether it was added.
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// AddressUsecase defines delivery address operations.
type AddressUsecase interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*entity.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*entity.Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*entity.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
