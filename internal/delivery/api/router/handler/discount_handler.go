package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fireworks/internal/delivery/api/response"
	"fireworks/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DiscountHandlerParams holds dependencies for DiscountHandler, injected by Fx.
type DiscountHandlerParams struct {
	fx.In

	DiscountUC usecase.DiscountUsecase
	Logger     *slog.Logger
}

// DiscountHandler serves promotions.
type DiscountHandler struct {
	discountUC usecase.DiscountUsecase
	logger     *slog.Logger
}

// NewDiscountHandler is the constructor for DiscountHandler.
func NewDiscountHandler(params DiscountHandlerParams) *DiscountHandler {
	return &DiscountHandler{
		discountUC: params.DiscountUC,
		logger:     params.Logger,
	}
}

// DiscountRequest is the body of promotion writes.
type DiscountRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	IsActive    *bool      `json:"is_active"`
}

func (r *DiscountRequest) toInput() usecase.DiscountInput {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return usecase.DiscountInput{
		Title:       r.Title,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
		IsActive:    isActive,
	}
}

// ListRunning returns promotions visible to customers.
func (h *DiscountHandler) ListRunning(c echo.Context) error {
	discounts, err := h.discountUC.ListRunning(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(discounts, newDiscountView))
}

// ListAll returns every promotion.
func (h *DiscountHandler) ListAll(c echo.Context) error {
	discounts, err := h.discountUC.ListAll(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(discounts, newDiscountView))
}

// Get returns one promotion.
func (h *DiscountHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "discount")
	}

	discount, err := h.discountUC.GetDiscount(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newDiscountView(discount))
}

// Create handles promotion creation.
func (h *DiscountHandler) Create(c echo.Context) error {
	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid discount input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	discount, err := h.discountUC.CreateDiscount(c.Request().Context(), req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newDiscountView(discount))
}

// Update handles promotion updates.
func (h *DiscountHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "discount")
	}

	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid discount input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	discount, err := h.discountUC.UpdateDiscount(c.Request().Context(), id, req.toInput())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newDiscountView(discount))
}

// Delete handles promotion removal.
func (h *DiscountHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "discount")
	}

	if err := h.discountUC.DeleteDiscount(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadImage replaces the promotion banner.
func (h *DiscountHandler) UploadImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "discount")
	}

	upload, err := readImageUpload(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_IMAGE", "A multipart \"image\" file is required")
	}

	discount, err := h.discountUC.UploadDiscountImage(c.Request().Context(), id, upload)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newDiscountView(discount))
}
