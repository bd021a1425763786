package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsletterModel is the GORM-specific struct for the 'newsletters' table.
type NewsletterModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title             string     `gorm:"type:varchar(255);not null"`
	Content           string     `gorm:"type:text;not null"`
	ImageKey          *string    `gorm:"type:varchar(255)"`
	AgeVerified       bool       `gorm:"not null;default:false"`
	AccountAge        *string    `gorm:"type:varchar(32)"`
	NumberOfOrders    int        `gorm:"not null;default:0"`
	UsersRelatedToTag bool       `gorm:"not null;default:false"`
	SendAt            time.Time  `gorm:"not null;index"`
	IsSent            bool       `gorm:"not null;default:false"`
	IsCanceled        bool       `gorm:"not null;default:false"`
	ClaimedAt         *time.Time
	SentAt            *time.Time
	SentCount         int        `gorm:"not null;default:0"`
	FailedCount       int        `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (NewsletterModel) TableName() string {
	return "newsletters"
}

func (m *NewsletterModel) BeforeCreate(*gorm.DB) error {
	return newID(&m.ID)
}

// NewsletterTagModel is the join table between newsletters and targeted tags.
type NewsletterTagModel struct {
	NewsletterID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (NewsletterTagModel) TableName() string {
	return "newsletter_tags"
}
