package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatusModel is the dictionary table of order statuses.
type OrderStatusModel struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false"`
	Text      string `gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderStatusModel) TableName() string {
	return "order_statuses"
}

// OrderModel is the GORM-specific struct for the 'orders' table.
type OrderModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	StatusID     int             `gorm:"not null;index"`
	AddressID    *uuid.UUID      `gorm:"type:uuid"`
	FIO          string          `gorm:"column:fio;type:varchar(255);not null;default:''"`
	Phone        string          `gorm:"type:varchar(32);not null;default:''"`
	OperatorCall bool            `gorm:"not null;default:false"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt    time.Time       `gorm:"index"`
	UpdatedAt    time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

func (m *OrderModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// OrderLineItemModel is the GORM-specific struct for the 'order_line_items' table.
type OrderLineItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName  string          `gorm:"type:varchar(255);not null"`
	Amount       int             `gorm:"not null;check:chk_order_line_items_amount,amount >= 1"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OrderLineItemModel) TableName() string {
	return "order_line_items"
}

func (m *OrderLineItemModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}
