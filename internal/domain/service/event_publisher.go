package service

import (
	"context"
)

// NewsletterEvent asks the dispatch worker to deliver a claimed newsletter.
type NewsletterEvent struct {
	RequestID    string  `json:"request_id,omitempty"` // For distributed tracing
	NewsletterID string  `json:"newsletter_id"`
	ChatIDs      []int64 `json:"chat_ids"` // Telegram chats resolved from the audience filter
}

// EventPublisher publishes newsletter dispatch events to a message transport.
type EventPublisher interface {
	PublishNewsletterEvent(ctx context.Context, event *NewsletterEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

// Order event types.
const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
	OrderEventRepeated      = "order.repeated"
	OrderEventUpdated       = "order.updated"
)

// OrderEvent notifies downstream consumers (warehouse, CRM) about order changes.
type OrderEvent struct {
	Type       string `json:"type"`
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	StatusID   int    `json:"status_id"`
	Total      string `json:"total"`
	OccurredAt string `json:"occurred_at"`
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error
	Close() error
}
