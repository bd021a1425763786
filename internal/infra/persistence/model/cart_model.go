package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItemModel is the GORM-specific struct for the 'cart_items' table.
type CartItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product;index"`
	Amount    int       `gorm:"not null;check:chk_cart_items_amount,amount >= 1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

func (m *CartItemModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// FavoriteModel is the GORM-specific struct for the 'favorites' table.
type FavoriteModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FavoriteModel) TableName() string {
	return "favorites"
}

func (m *FavoriteModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// AddressModel is the GORM-specific struct for the 'addresses' table.
type AddressModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_addresses_user_full_address"`
	Label       string    `gorm:"type:varchar(100);not null;default:''"`
	FullAddress string    `gorm:"type:varchar(512);not null;uniqueIndex:idx_addresses_user_full_address"`
	Comment     string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (AddressModel) TableName() string {
	return "addresses"
}

func (m *AddressModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}
