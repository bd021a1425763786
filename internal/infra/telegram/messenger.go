package telegram

import (
	"context"
	"log/slog"

	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used to push messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type messenger struct {
	sender Sender
	logger *slog.Logger
}

// NewMessenger is the constructor for messenger.
func NewMessenger(bot *tgbotapi.BotAPI, logger *slog.Logger) service.Messenger {
	return NewMessengerWithSender(bot, logger)
}

// NewMessengerWithSender builds a messenger over any Sender.
func NewMessengerWithSender(sender Sender, logger *slog.Logger) service.Messenger {
	return &messenger{sender: sender, logger: logger}
}

func (m *messenger) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := m.sender.Send(msg); err != nil {
		return errors.Wrapf(err, "failed to send message to chat %d", chatID)
	}

	return nil
}

func (m *messenger) SendPhoto(ctx context.Context, chatID int64, image []byte, fileName, caption string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: image})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := m.sender.Send(photo); err != nil {
		return errors.Wrapf(err, "failed to send photo to chat %d", chatID)
	}

	return nil
}
