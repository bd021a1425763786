package service

import (
	"github.com/google/uuid"
)

// QRCodeService renders product deep links into QR codes.
type QRCodeService interface {
	// GenerateProductQR returns a PNG pointing to the product page of the bot.
	GenerateProductQR(productID uuid.UUID) ([]byte, error)

	// ParseStartPayload extracts the product id from a bot /start payload.
	ParseStartPayload(payload string) (uuid.UUID, error)
}
