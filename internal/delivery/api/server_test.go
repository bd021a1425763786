package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fireworks/config"
	apimiddleware "fireworks/internal/delivery/api/middleware"
	deliverycontext "fireworks/internal/delivery/context"

	"github.com/stretchr/testify/assert"
)

func newTestServerParams() ServerParams {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "1KB"

	return ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		ErrorMiddleware: apimiddleware.NewErrorMiddleware(logger),
	}
}

func TestNewEcho_Middleware(t *testing.T) {
	e := newEcho(newTestServerParams())

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantCode: http.StatusOK},
		{name: "customer routes need a token", method: http.MethodGet, target: "/api/v1/cart", wantCode: http.StatusUnauthorized},
		{name: "admin routes need a token", method: http.MethodGet, target: "/api/v1/admin/orders", wantCode: http.StatusUnauthorized},
		{name: "oversized body", method: http.MethodPost, target: "/api/v1/auth/login", body: strings.Repeat("x", 2048), wantCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
		})
	}
}
