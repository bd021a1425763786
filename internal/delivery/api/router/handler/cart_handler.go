package handler

import (
	"log/slog"
	"net/http"

	"fireworks/internal/delivery/api/middleware"
	"fireworks/internal/delivery/api/response"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// CartHandlerParams holds dependencies for the cart, favorites and address handlers.
type CartHandlerParams struct {
	fx.In

	CartUC     usecase.CartUsecase
	FavoriteUC usecase.FavoriteUsecase
	AddressUC  usecase.AddressUsecase
	Logger     *slog.Logger
}

// CartHandler serves the customer's cart, favorites and addresses.
type CartHandler struct {
	cartUC     usecase.CartUsecase
	favoriteUC usecase.FavoriteUsecase
	addressUC  usecase.AddressUsecase
	logger     *slog.Logger
}

// NewCartHandler is the constructor for CartHandler.
func NewCartHandler(params CartHandlerParams) *CartHandler {
	return &CartHandler{
		cartUC:     params.CartUC,
		favoriteUC: params.FavoriteUC,
		addressUC:  params.AddressUC,
		logger:     params.Logger,
	}
}

// AddCartItemRequest puts a product into the cart.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Amount    int       `json:"amount" validate:"omitempty,min=1,max=1000"`
}

// SetAmountRequest changes the amount of a cart row.
type SetAmountRequest struct {
	Amount int `json:"amount" validate:"required,min=1,max=1000"`
}

// FavoriteRequest adds a product to favorites.
type FavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// AddressRequest is the body of address writes.
type AddressRequest struct {
	Label       string `json:"label" validate:"max=64"`
	FullAddress string `json:"full_address" validate:"required,max=1024"`
	Comment     string `json:"comment" validate:"max=1024"`
}

func unauthorized(c echo.Context) error {
	return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
}

// GetCart returns the cart with current prices.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	cart, err := h.cartUC.GetCart(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartView(cart))
}

// ClearCart removes every cart row.
func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.cartUC.Clear(c.Request().Context(), userID); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AddCartItem adds a product or increases its amount.
func (h *CartHandler) AddCartItem(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart item input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	cart, err := h.cartUC.AddItem(c.Request().Context(), userID, req.ProductID, req.Amount)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartView(cart))
}

// SetCartItemAmount overwrites the amount of a cart row.
func (h *CartHandler) SetCartItemAmount(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := parseID(c, "productId")
	if !ok {
		return invalidID(c, "product")
	}

	var req SetAmountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid amount input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	cart, err := h.cartUC.SetAmount(c.Request().Context(), userID, productID, req.Amount)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartView(cart))
}

// RemoveCartItem deletes a cart row.
func (h *CartHandler) RemoveCartItem(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := parseID(c, "productId")
	if !ok {
		return invalidID(c, "product")
	}

	cart, err := h.cartUC.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCartView(cart))
}

// ListFavorites returns the favorites with product data.
func (h *CartHandler) ListFavorites(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	favorites, err := h.favoriteUC.List(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(favorites, newFavoriteView))
}

// AddFavorite favorites a product.
func (h *CartHandler) AddFavorite(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid favorite input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	favorite, err := h.favoriteUC.Add(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newFavoriteView(favorite))
}

// RemoveFavorite un-favorites a product.
func (h *CartHandler) RemoveFavorite(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := parseID(c, "productId")
	if !ok {
		return invalidID(c, "product")
	}

	if err := h.favoriteUC.Remove(c.Request().Context(), userID, productID); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListAddresses returns the saved addresses.
func (h *CartHandler) ListAddresses(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	addresses, err := h.addressUC.List(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(addresses, newAddressView))
}

// GetAddress returns one saved address.
func (h *CartHandler) GetAddress(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "address")
	}

	address, err := h.addressUC.Get(c.Request().Context(), userID, id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAddressView(address))
}

// CreateAddress saves a delivery address.
func (h *CartHandler) CreateAddress(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	address, err := h.addressUC.Create(c.Request().Context(), userID, usecase.AddressInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newAddressView(address))
}

// UpdateAddress changes a saved address.
func (h *CartHandler) UpdateAddress(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "address")
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	address, err := h.addressUC.Update(c.Request().Context(), userID, id, usecase.AddressInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newAddressView(address))
}

// DeleteAddress removes a saved address.
func (h *CartHandler) DeleteAddress(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "address")
	}

	if err := h.addressUC.Delete(c.Request().Context(), userID, id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
