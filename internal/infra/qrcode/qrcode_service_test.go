package qrcode

import (
	"testing"

	"fireworks/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService("fireworks_bot", tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateProductQR(t *testing.T) {
	service := NewQRCodeService("fireworks_bot", 256, "M")

	qrBytes, err := service.GenerateProductQR(uuid.New())
	require.NoError(t, err)
	require.Greater(t, len(qrBytes), 4)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestQRCodeService_GenerateProductQR_NoBot(t *testing.T) {
	service := NewQRCodeServiceFromConfig(&config.Config{})

	_, err := service.GenerateProductQR(uuid.New())
	assert.Error(t, err)
}

func TestQRCodeService_DeepLink(t *testing.T) {
	service := NewQRCodeService("fireworks_bot", 256, "M").(*qrcodeService)
	productID := uuid.MustParse("0190a6f0-0000-7000-8000-000000000001")

	assert.Equal(t,
		"https://t.me/fireworks_bot?start=product_0190a6f0-0000-7000-8000-000000000001",
		service.DeepLink(productID))
}

func TestQRCodeService_ParseStartPayload(t *testing.T) {
	service := NewQRCodeService("fireworks_bot", 256, "M")
	productID := uuid.New()

	parsed, err := service.ParseStartPayload("product_" + productID.String())
	require.NoError(t, err)
	assert.Equal(t, productID, parsed)

	invalid := []string{"", "product_", "product_not-a-uuid", "order_" + productID.String()}
	for _, payload := range invalid {
		_, err := service.ParseStartPayload(payload)
		assert.Error(t, err, "payload %q", payload)
	}
}
