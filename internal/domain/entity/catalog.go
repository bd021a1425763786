package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products in the catalog, e.g. "Rockets" or "Sparklers".
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag labels products for search and newsletter targeting.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is a sellable catalog item.
type Product struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageKey    *string // Blob storage key of the product photo.
	IsActive    bool    // Inactive products are hidden from customers and cannot be added to carts.
	Tags        []*Tag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Discount is a promotion shown in the catalog and in the bot.
type Discount struct {
	ID          uuid.UUID
	Title       string
	Description string
	ImageKey    *string
	StartsAt    time.Time
	EndsAt      *time.Time // Open-ended when nil.
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRunning reports whether the promotion is visible at the given instant.
func (d *Discount) IsRunning(now time.Time) bool {
	if !d.IsActive || now.Before(d.StartsAt) {
		return false
	}

	return d.EndsAt == nil || now.Before(*d.EndsAt)
}
