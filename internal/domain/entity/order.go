package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seeded order statuses. The status text, not the id, decides address mutability.
const (
	OrderStatusCreatedID   = 1
	OrderStatusConfirmedID = 2
	OrderStatusShippedID   = 3
	OrderStatusDeliveredID = 4
	OrderStatusCanceledID  = 5

	OrderStatusCreated = "Created"
	OrderStatusShipped = "Shipped"
)

// OrderStatus is a row of the order_statuses dictionary.
type OrderStatus struct {
	ID   int
	Text string
}

// DefaultOrderStatuses is the dictionary seeded by migrations.
func DefaultOrderStatuses() []OrderStatus {
	return []OrderStatus{
		{ID: OrderStatusCreatedID, Text: OrderStatusCreated},
		{ID: OrderStatusConfirmedID, Text: "Confirmed"},
		{ID: OrderStatusShippedID, Text: OrderStatusShipped},
		{ID: OrderStatusDeliveredID, Text: "Delivered"},
		{ID: OrderStatusCanceledID, Text: "Canceled"},
	}
}

// Order is a placed order. Total always equals the sum of its line item subtotals.
type Order struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	StatusID     int
	Status       *OrderStatus
	AddressID    *uuid.UUID
	Address      *Address
	FIO          string // Recipient full name.
	Phone        string
	OperatorCall bool // Customer asked an operator to call and confirm the order.
	Total        decimal.Decimal
	Items        []*OrderLineItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsShipped reports whether the order left the warehouse.
func (o *Order) IsShipped() bool {
	return o.Status != nil && o.Status.Text == OrderStatusShipped
}

// OrderLineItem freezes the product name and price at checkout time.
type OrderLineItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    *uuid.UUID // Nil once the product was deleted from the catalog.
	ProductName  string
	Amount       int
	PricePerUnit decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subtotal is amount times the snapshot price.
func (i *OrderLineItem) Subtotal() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Amount)))
}

// SumLineItems computes an order total from its line items.
func SumLineItems(items []*OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return total
}
