package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one (user, product) row of a shopping cart.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Amount    int
	Product   *Product // Loaded for listings, nil otherwise.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal is amount times the current product price.
func (c *CartItem) Subtotal() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}

	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Amount)))
}

// Favorite marks a product the user wants to keep an eye on.
type Favorite struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Product   *Product
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address is a delivery address saved by a user.
type Address struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Label       string // A user-defined label, e.g. "Home", "Dacha".
	FullAddress string // The full, human-readable street address.
	Comment     string // Courier instructions.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
