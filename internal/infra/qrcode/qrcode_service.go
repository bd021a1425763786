package qrcode

import (
	"net/url"
	"strings"

	"fireworks/config"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// ProductPayloadPrefix prefixes product ids in bot /start payloads.
const ProductPayloadPrefix = "product_"

const defaultSize = 256

type qrcodeService struct {
	botUsername          string
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(botUsername string, size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		botUsername:          botUsername,
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// NewQRCodeServiceFromConfig reads bot and rendering settings from the config.
func NewQRCodeServiceFromConfig(cfg *config.Config) service.QRCodeService {
	var botUsername string
	if cfg.Telegram != nil {
		botUsername = cfg.Telegram.BotUsername
	}

	size, level := defaultSize, "M"
	if cfg.QRCode != nil {
		size, level = cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel
	}

	return NewQRCodeService(botUsername, size, level)
}

// DeepLink builds the t.me link that opens the bot on the product card.
func (s *qrcodeService) DeepLink(productID uuid.UUID) string {
	query := url.Values{"start": []string{ProductPayloadPrefix + productID.String()}}

	return "https://t.me/" + s.botUsername + "?" + query.Encode()
}

// GenerateProductQR renders the product deep link as a PNG.
func (s *qrcodeService) GenerateProductQR(productID uuid.UUID) ([]byte, error) {
	if s.botUsername == "" {
		return nil, errors.New("telegram bot username is not configured")
	}

	qrCode, err := qrcode.New(s.DeepLink(productID), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseStartPayload returns the product id carried by a "product_<uuid>" payload.
func (s *qrcodeService) ParseStartPayload(payload string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(payload), ProductPayloadPrefix)
	if !ok {
		return uuid.Nil, errors.Errorf("unsupported start payload: %q", payload)
	}

	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to parse product ID")
	}

	return productID, nil
}
