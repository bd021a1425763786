package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fireworks/config"
	deliverycontext "fireworks/internal/delivery/context"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/infra/pubsub"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDispatchUsecase struct {
	mock.Mock
}

func (m *mockDispatchUsecase) ScheduleDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	return args.Int(0), args.Error(1)
}

func (m *mockDispatchUsecase) Deliver(ctx context.Context, event *service.NewsletterEvent) (*usecase.DispatchReport, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.DispatchReport), args.Error(1)
}

func newTestPushHandler(uc *mockDispatchUsecase) *PushHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor := NewNewsletterProcessor(ProcessorParams{DispatchUC: uc, Logger: logger})

	return NewPushHandler(PushHandlerParams{Config: &config.Config{}, Logger: logger, Processor: processor})
}

func pushBody(t *testing.T, data string, attributes map[string]string) string {
	t.Helper()

	var msg pubsub.PushMessage
	msg.Message.Data = data
	msg.Message.Attributes = attributes
	msg.Message.MessageID = "1"
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return string(body)
}

func encodedEvent(t *testing.T, event *service.NewsletterEvent) string {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(data)
}

func servePush(h *PushHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	e.POST("/push", h.HandlePush)

	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestPushHandler_HandlePush(t *testing.T) {
	newsletterID := uuid.NewString()
	event := &service.NewsletterEvent{NewsletterID: newsletterID, ChatIDs: []int64{1, 2}}

	tests := []struct {
		name     string
		body     func(t *testing.T) string
		setup    func(uc *mockDispatchUsecase)
		wantCode int
	}{
		{
			name: "delivered",
			body: func(t *testing.T) string {
				return pushBody(t, encodedEvent(t, event), map[string]string{pubsub.AttrRequestID: "req-1"})
			},
			setup: func(uc *mockDispatchUsecase) {
				uc.On("Deliver", mock.MatchedBy(func(ctx context.Context) bool {
					return deliverycontext.GetRequestIDFromContext(ctx) == "req-1"
				}), mock.MatchedBy(func(e *service.NewsletterEvent) bool {
					return e.NewsletterID == newsletterID && len(e.ChatIDs) == 2
				})).Return(&usecase.DispatchReport{Sent: 2}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "database failure is retried",
			body: func(t *testing.T) string { return pushBody(t, encodedEvent(t, event), nil) },
			setup: func(uc *mockDispatchUsecase) {
				uc.On("Deliver", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()
			},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "unknown newsletter is acknowledged",
			body: func(t *testing.T) string { return pushBody(t, encodedEvent(t, event), nil) },
			setup: func(uc *mockDispatchUsecase) {
				uc.On("Deliver", mock.Anything, mock.Anything).
					Return(nil, errors.Wrap(domainerrors.ErrNewsletterNotFound, "failed to load newsletter")).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "invalid base64 is acknowledged",
			body:     func(t *testing.T) string { return pushBody(t, "%%%", nil) },
			setup:    func(*mockDispatchUsecase) {},
			wantCode: http.StatusOK,
		},
		{
			name: "event without newsletter is acknowledged",
			body: func(t *testing.T) string {
				return pushBody(t, base64.StdEncoding.EncodeToString([]byte(`{"chat_ids":[1]}`)), nil)
			},
			setup:    func(*mockDispatchUsecase) {},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockDispatchUsecase{}
			tt.setup(uc)

			rec := servePush(newTestPushHandler(uc), tt.body(t))
			assert.Equal(t, tt.wantCode, rec.Code)
			uc.AssertExpectations(t)
		})
	}
}

func TestPushHandler_RejectsUnverifiedPush(t *testing.T) {
	uc := &mockDispatchUsecase{}
	h := newTestPushHandler(uc)
	h.verify = func(*http.Request) error { return errors.New("missing authorization header") }

	rec := servePush(h, pushBody(t, "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	uc.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestNewPushHandler_VerifiesGoogleOutsideDevelop(t *testing.T) {
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: "google"}}
	cfg.Env.Env = "production"
	assert.NotNil(t, NewPushHandler(PushHandlerParams{Config: cfg, Logger: slog.Default()}).verify)

	cfg.Env.Env = "develop"
	assert.Nil(t, NewPushHandler(PushHandlerParams{Config: cfg, Logger: slog.Default()}).verify)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("timeout")))
	assert.True(t, IsRetryable(errors.WithStack(domainerrors.ErrInternalError)))
	assert.False(t, IsRetryable(domainerrors.ErrValidationFailed.WrapMessage("invalid newsletter id")))
}
