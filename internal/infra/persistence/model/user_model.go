package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is the GORM-specific struct for the 'users' table.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TelegramID   *int64    `gorm:"uniqueIndex"`
	Username     string    `gorm:"type:varchar(64);not null;default:''"`
	FirstName    string    `gorm:"type:varchar(128);not null;default:''"`
	LastName     string    `gorm:"type:varchar(128);not null;default:''"`
	Phone        string    `gorm:"type:varchar(32);not null;default:''"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null;default:''"`
	IsVerified   bool      `gorm:"not null;default:false"`
	AgeVerified  bool      `gorm:"not null;default:false"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	IsSuperuser  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}
