package context

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestScopedValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestIDFromContext(ctx))
	assert.Equal(t, uuid.Nil, GetUserIDFromContext(ctx))

	fallback := slog.Default()
	assert.Same(t, fallback, GetLoggerOrDefault(ctx, fallback))

	userID := uuid.New()
	logger := slog.New(slog.DiscardHandler)
	ctx = WithLogger(WithUserID(WithRequestID(ctx, "req-1"), userID), logger)

	assert.Equal(t, "req-1", GetRequestIDFromContext(ctx))
	assert.Equal(t, userID, GetUserIDFromContext(ctx))
	assert.Same(t, logger, GetLoggerOrDefault(ctx, fallback))
}

func TestGetRequestID(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

	generated := GetRequestID(c)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	SetRequestID(c, "req-2")
	assert.Equal(t, "req-2", GetRequestID(c))
}
