package usecase

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// OrderContactInput is the delivery part of an order.
type OrderContactInput struct {
	AddressID    *uuid.UUID // Must belong to the order owner when set.
	FIO          string
	Phone        string
	OperatorCall bool
}

// OrderListInput filters order listings. Non-admin actors only see their own orders.
type OrderListInput struct {
	StatusID *int
	Page
}

// OrderItemInput adds a product to an existing order.
type OrderItemInput struct {
	ProductID uuid.UUID
	Amount    int
}

// --- Output DTOs ---

// OrderListOutput is one page of orders.
type OrderListOutput struct {
	Orders []*entity.Order
	Total  int64
}

// OrderUsecase defines the order lifecycle.
type OrderUsecase interface {
	// CreateOrder turns the cart into an order with status "Created" and empties the cart.
	CreateOrder(ctx context.Context, userID uuid.UUID, input OrderContactInput) (*entity.Order, error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*entity.Order, error)
	ListOrders(ctx context.Context, actor Actor, input OrderListInput) (*OrderListOutput, error)
	// UpdateAddress changes address and contact data until the order is shipped.
	UpdateAddress(ctx context.Context, actor Actor, orderID uuid.UUID, input OrderContactInput) (*entity.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, statusID int) (*entity.Order, error)
	// RepeatOrder places a new order with the line items and contact data of an existing one.
	RepeatOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error)
	ListStatuses(ctx context.Context) ([]*entity.OrderStatus, error)

	AddItem(ctx context.Context, orderID uuid.UUID, input OrderItemInput) (*entity.Order, error)
	UpdateItemAmount(ctx context.Context, orderID, itemID uuid.UUID, amount int) (*entity.Order, error)
	RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*entity.Order, error)
}
