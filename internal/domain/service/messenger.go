package service

import "context"

// Messenger delivers messages to Telegram chats.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, image []byte, fileName, caption string) error
}
