package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fireworks/internal/delivery/api/response"
	"fireworks/internal/domain/entity"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// NewsletterHandlerParams holds dependencies for NewsletterHandler, injected by Fx.
type NewsletterHandlerParams struct {
	fx.In

	NewsletterUC usecase.NewsletterUsecase
	Logger       *slog.Logger
}

// NewsletterHandler serves newsletter management for staff.
type NewsletterHandler struct {
	newsletterUC usecase.NewsletterUsecase
	logger       *slog.Logger
}

// NewNewsletterHandler is the constructor for NewsletterHandler.
func NewNewsletterHandler(params NewsletterHandlerParams) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterUC: params.NewsletterUC,
		logger:       params.Logger,
	}
}

// NewsletterRequest is the body of newsletter writes.
type NewsletterRequest struct {
	Title             string      `json:"title" validate:"required,max=255"`
	Content           string      `json:"content" validate:"required,max=4096"`
	AgeVerified       bool        `json:"age_verified"`
	AccountAge        *string     `json:"account_age" validate:"omitempty,oneof=LESS_THAN_3_MONTHS FROM_3_TO_12_MONTHS FROM_1_TO_3_YEARS MORE_THAN_3_YEARS"`
	NumberOfOrders    int         `json:"number_of_orders" validate:"min=0"`
	UsersRelatedToTag bool        `json:"users_related_to_tag"`
	TagIDs            []uuid.UUID `json:"tag_ids"`
	SendAt            time.Time   `json:"send_at" validate:"required"`
}

func (r *NewsletterRequest) toInput() usecase.NewsletterInput {
	input := usecase.NewsletterInput{
		Title:             r.Title,
		Content:           r.Content,
		AgeVerified:       r.AgeVerified,
		NumberOfOrders:    r.NumberOfOrders,
		UsersRelatedToTag: r.UsersRelatedToTag,
		TagIDs:            r.TagIDs,
		SendAt:            r.SendAt,
	}
	if r.AccountAge != nil {
		bucket := entity.AccountAge(*r.AccountAge)
		input.AccountAge = &bucket
	}

	return input
}

// List returns one page of newsletters.
func (h *NewsletterHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid pagination parameters")
	}

	output, err := h.newsletterUC.List(c.Request().Context(), page)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paginated(c, mapViews(output.Newsletters, newNewsletterView), pagination(page, output.Total))
}

// Get returns one newsletter.
func (h *NewsletterHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "newsletter")
	}

	newsletter, err := h.newsletterUC.Get(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newNewsletterView(newsletter))
}

// Create schedules a newsletter.
func (h *NewsletterHandler) Create(c echo.Context) error {
	var req NewsletterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid newsletter input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	newsletter, err := h.newsletterUC.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newNewsletterView(newsletter))
}

// Update changes a newsletter that has not been dispatched.
func (h *NewsletterHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "newsletter")
	}

	var req NewsletterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid newsletter input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	newsletter, err := h.newsletterUC.Update(c.Request().Context(), id, req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newNewsletterView(newsletter))
}

// Cancel stops a scheduled newsletter.
func (h *NewsletterHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "newsletter")
	}

	if err := h.newsletterUC.Cancel(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadImage attaches a picture sent with the newsletter.
func (h *NewsletterHandler) UploadImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "newsletter")
	}

	upload, err := readImageUpload(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_IMAGE", "A multipart \"image\" file is required")
	}

	newsletter, err := h.newsletterUC.UploadImage(c.Request().Context(), id, upload)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newNewsletterView(newsletter))
}

// Preview reports the current audience of a newsletter.
func (h *NewsletterHandler) Preview(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "newsletter")
	}

	var sample int
	if err := echo.QueryParamsBinder(c).Int("sample", &sample).BindError(); err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid sample size")
	}

	preview, err := h.newsletterUC.Preview(c.Request().Context(), id, sample)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &AudiencePreviewView{
		Count:  preview.Count,
		Sample: mapViews(preview.Sample, newUserView),
	})
}
