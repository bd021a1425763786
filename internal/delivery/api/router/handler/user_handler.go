package handler

import (
	"log/slog"
	"net/http"

	"fireworks/internal/delivery/api/middleware"
	"fireworks/internal/delivery/api/response"
	"fireworks/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// UpdateProfileRequest changes the caller's profile. Omitted fields stay unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

// SetVerificationRequest changes operator-controlled flags.
type SetVerificationRequest struct {
	IsVerified  *bool `json:"is_verified"`
	AgeVerified *bool `json:"age_verified"`
}

// GetProfile returns the caller's profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.userUC.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newUserView(user))
}

// UpdateProfile changes the caller's name and phone.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.userUC.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newUserView(user))
}

// ListUsers returns one page of users.
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid pagination parameters")
	}

	output, err := h.userUC.ListUsers(c.Request().Context(), page)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paginated(c, mapViews(output.Users, newUserView), pagination(page, output.Total))
}

// SetVerification changes the verification flags of a user.
func (h *UserHandler) SetVerification(c echo.Context) error {
	userID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}

	var req SetVerificationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}

	user, err := h.userUC.SetVerification(c.Request().Context(), userID, usecase.SetVerificationInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newUserView(user))
}
