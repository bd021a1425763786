package service

import "fireworks/internal/domain/entity"

// TelegramAuthVerifier checks Telegram Login Widget payloads.
type TelegramAuthVerifier interface {
	Verify(fields map[string]string) (*entity.TelegramProfile, error)
}
