package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryModel is the GORM-specific struct for the 'categories' table.
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	Description string    `gorm:"type:text;not null;default:''"`
	SortOrder   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CategoryModel) TableName() string {
	return "categories"
}

func (m *CategoryModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// TagModel is the GORM-specific struct for the 'tags' table.
type TagModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TagModel) TableName() string {
	return "tags"
}

func (m *TagModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// ProductModel is the GORM-specific struct for the 'products' table.
type ProductModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ImageKey    *string         `gorm:"type:varchar(255)"`
	IsActive    bool            `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// ProductTagModel is the join table between products and tags.
type ProductTagModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductTagModel) TableName() string {
	return "product_tags"
}

// DiscountModel is the GORM-specific struct for the 'discounts' table.
type DiscountModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text;not null;default:''"`
	ImageKey    *string    `gorm:"type:varchar(255)"`
	StartsAt    time.Time  `gorm:"not null"`
	EndsAt      *time.Time
	IsActive    bool       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DiscountModel) TableName() string {
	return "discounts"
}

func (m *DiscountModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}
