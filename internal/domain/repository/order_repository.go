package repository

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID   *uuid.UUID
	StatusID *int
	ListOptions
}

// OrderRepository defines order persistence. Orders are returned with status,
// address and line items loaded.
type OrderRepository interface {
	// Create inserts the order and its line items, then stores the recomputed total.
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int64, error)
	UpdateContact(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, statusID int) error

	FindStatus(ctx context.Context, id int) (*entity.OrderStatus, error)
	ListStatuses(ctx context.Context) ([]*entity.OrderStatus, error)

	AddItem(ctx context.Context, item *entity.OrderLineItem) error
	UpdateItemAmount(ctx context.Context, orderID, itemID uuid.UUID, amount int) error
	DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error
	// RecalculateTotal sets order.total to the sum of its current line items.
	RecalculateTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	// DetachProduct clears product references of line items, keeping their snapshots.
	DetachProduct(ctx context.Context, productID uuid.UUID) error
}
