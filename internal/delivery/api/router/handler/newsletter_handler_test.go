package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNewsletterUsecase struct {
	usecase.NewsletterUsecase
	mock.Mock
}

func (m *mockNewsletterUsecase) Create(ctx context.Context, input usecase.NewsletterInput) (*entity.Newsletter, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Newsletter), args.Error(1)
}

func (m *mockNewsletterUsecase) Update(ctx context.Context, id uuid.UUID, input usecase.NewsletterInput) (*entity.Newsletter, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Newsletter), args.Error(1)
}

func (m *mockNewsletterUsecase) Preview(ctx context.Context, id uuid.UUID, sampleSize int) (*usecase.AudiencePreview, error) {
	args := m.Called(ctx, id, sampleSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.AudiencePreview), args.Error(1)
}

func newNewsletterTestServer(uc *mockNewsletterUsecase) *echo.Echo {
	e := newTestEcho()
	auth := newTestAuth()
	h := NewNewsletterHandler(NewsletterHandlerParams{NewsletterUC: uc, Logger: discardLogger()})

	g := e.Group("/api/v1/admin/newsletters", auth.Authenticate, auth.RequireRole(entity.RoleAdmin))
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.GET("/:id/preview", h.Preview)

	return e
}

func TestNewsletterHandler_Create(t *testing.T) {
	admin := "admin:" + uuid.NewString()
	sendAt := time.Date(2026, 12, 31, 18, 0, 0, 0, time.UTC)
	tagID := uuid.New()

	tests := []struct {
		name     string
		body     string
		setup    func(uc *mockNewsletterUsecase)
		wantCode int
		wantErr  string
	}{
		{
			name: "targets the audience",
			body: `{"title":"New Year","content":"Rockets -20%","account_age":"FROM_1_TO_3_YEARS","number_of_orders":2,` +
				`"users_related_to_tag":true,"tag_ids":["` + tagID.String() + `"],"send_at":"2026-12-31T18:00:00Z"}`,
			setup: func(uc *mockNewsletterUsecase) {
				uc.On("Create", mock.Anything, mock.MatchedBy(func(input usecase.NewsletterInput) bool {
					return input.AccountAge != nil && *input.AccountAge == entity.AccountAgeFrom1To3Years &&
						input.NumberOfOrders == 2 && input.UsersRelatedToTag &&
						len(input.TagIDs) == 1 && input.TagIDs[0] == tagID &&
						input.SendAt.Equal(sendAt)
				})).Return(&entity.Newsletter{ID: uuid.New(), Title: "New Year", SendAt: sendAt, Tags: []*entity.Tag{{ID: tagID, Name: "rockets"}}}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "unknown account age",
			body:     `{"title":"t","content":"c","account_age":"FOREVER","send_at":"2026-12-31T18:00:00Z"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "send_at is required",
			body:     `{"title":"t","content":"c"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name: "unknown tag",
			body: `{"title":"t","content":"c","tag_ids":["` + tagID.String() + `"],"send_at":"2026-12-31T18:00:00Z"}`,
			setup: func(uc *mockNewsletterUsecase) {
				uc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.WithStack(domainerrors.ErrTagNotFound))
			},
			wantCode: http.StatusNotFound,
			wantErr:  "TAG_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockNewsletterUsecase{}
			if tt.setup != nil {
				tt.setup(uc)
			}

			rec := doRequest(newNewsletterTestServer(uc), http.MethodPost, "/api/v1/admin/newsletters", admin, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			body := decodeEnvelope(t, rec)
			if tt.wantErr != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.wantErr, body.Error.Code)
			} else {
				var view NewsletterView
				require.NoError(t, json.Unmarshal(body.Data, &view))
				assert.False(t, view.IsSent)
				require.Len(t, view.Tags, 1)
			}
			uc.AssertExpectations(t)
		})
	}
}

func TestNewsletterHandler_UpdateLocked(t *testing.T) {
	uc := &mockNewsletterUsecase{}
	id := uuid.New()
	uc.On("Update", mock.Anything, id, mock.Anything).Return(nil, errors.WithStack(domainerrors.ErrNewsletterLocked))

	rec := doRequest(newNewsletterTestServer(uc), http.MethodPut, "/api/v1/admin/newsletters/"+id.String(),
		"admin:"+uuid.NewString(), `{"title":"t","content":"c","send_at":"2026-12-31T18:00:00Z"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NEWSLETTER_LOCKED", decodeEnvelope(t, rec).Error.Code)
}

func TestNewsletterHandler_Preview(t *testing.T) {
	uc := &mockNewsletterUsecase{}
	e := newNewsletterTestServer(uc)
	id := uuid.New()
	telegramID := int64(4242)

	uc.On("Preview", mock.Anything, id, 3).Return(&usecase.AudiencePreview{
		Count:  12,
		Sample: []*entity.User{{ID: uuid.New(), TelegramID: &telegramID, FirstName: "Anna"}},
	}, nil).Once()

	rec := doRequest(e, http.MethodGet, "/api/v1/admin/newsletters/"+id.String()+"/preview?sample=3", "admin:"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview AudiencePreviewView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &preview))
	assert.EqualValues(t, 12, preview.Count)
	require.Len(t, preview.Sample, 1)
	assert.Equal(t, "Anna", preview.Sample[0].FirstName)

	rec = doRequest(e, http.MethodGet, "/api/v1/admin/newsletters/"+id.String()+"/preview?sample=many", "admin:"+uuid.NewString(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_QUERY", decodeEnvelope(t, rec).Error.Code)
	uc.AssertExpectations(t)
}
