package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fireworks/config"
	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	"fireworks/internal/domain/service"
	"fireworks/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{Auth: &config.AuthConfig{AccessTTL: 5 * time.Minute}}
	cfg.SecretKey.Access = "middleware-test-secret"

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return tokens
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Error.Code
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	tokens := newTestTokenService(t)
	m := NewAuthMiddleware(tokens, discardLogger())
	userID := uuid.New()

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, actor.UserID, deliverycontext.GetUserIDFromContext(c.Request().Context()))

		return c.JSON(http.StatusOK, map[string]any{"user_id": actor.UserID, "admin": actor.IsAdmin})
	}, m.Authenticate)

	valid, err := tokens.GenerateAccessToken(userID, entity.Roles{entity.RoleUser}.ToStrings())
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantErr: "MISSING_TOKEN"},
		{name: "not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized, wantErr: "INVALID_TOKEN"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized, wantErr: "INVALID_TOKEN"},
		{name: "valid token", header: "Bearer " + valid, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.header)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, rec))
			} else {
				assert.Contains(t, rec.Body.String(), userID.String())
				assert.Contains(t, rec.Body.String(), `"admin":false`)
			}
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tokens := newTestTokenService(t)
	m := NewAuthMiddleware(tokens, discardLogger())

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, m.Authenticate, m.RequireRole(entity.RoleAdmin))

	customer, err := tokens.GenerateAccessToken(uuid.New(), entity.Roles{entity.RoleUser}.ToStrings())
	require.NoError(t, err)
	admin, err := tokens.GenerateAccessToken(uuid.New(), entity.Roles{entity.RoleUser, entity.RoleAdmin}.ToStrings())
	require.NoError(t, err)

	rec := serve(e, "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = serve(e, "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
