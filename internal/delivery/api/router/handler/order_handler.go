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

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	OrderUC usecase.OrderUsecase
	Logger  *slog.Logger
}

// OrderHandler serves the order lifecycle for customers and staff.
type OrderHandler struct {
	orderUC usecase.OrderUsecase
	logger  *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler.
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orderUC: params.OrderUC,
		logger:  params.Logger,
	}
}

// OrderContactRequest carries the delivery data of an order.
type OrderContactRequest struct {
	AddressID    *uuid.UUID `json:"address_id"`
	FIO          string     `json:"fio" validate:"max=255"`
	Phone        string     `json:"phone" validate:"max=32"`
	OperatorCall bool       `json:"operator_call"`
}

// UpdateStatusRequest overwrites the order status.
type UpdateStatusRequest struct {
	StatusID int `json:"status_id" validate:"required,min=1"`
}

// OrderItemRequest adds a product to an order.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Amount    int       `json:"amount" validate:"required,min=1,max=1000"`
}

// actor returns the caller. Customer routes never act with admin rights.
func actor(c echo.Context, asAdmin bool) (usecase.Actor, bool) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		return usecase.Actor{}, false
	}
	caller.IsAdmin = caller.IsAdmin && asAdmin

	return caller, true
}

// CreateOrder turns the cart into an order.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderContactRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.orderUC.CreateOrder(c.Request().Context(), userID, usecase.OrderContactInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newOrderView(order))
}

// ListOrders returns the caller's orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	return h.listOrders(c, false)
}

// ListAllOrders returns every order, optionally filtered by status.
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	return h.listOrders(c, true)
}

func (h *OrderHandler) listOrders(c echo.Context, asAdmin bool) error {
	caller, ok := actor(c, asAdmin)
	if !ok {
		return unauthorized(c)
	}

	page, err := parsePage(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid pagination parameters")
	}

	input := usecase.OrderListInput{Page: page}
	var statusID int
	if err := echo.QueryParamsBinder(c).Int("status_id", &statusID).BindError(); err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid status filter")
	}
	if statusID > 0 {
		input.StatusID = &statusID
	}

	output, err := h.orderUC.ListOrders(c.Request().Context(), caller, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paginated(c, mapViews(output.Orders, newOrderView), pagination(page, output.Total))
}

// GetOrder returns one of the caller's orders.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	return h.getOrder(c, false)
}

// GetAnyOrder returns any order.
func (h *OrderHandler) GetAnyOrder(c echo.Context) error {
	return h.getOrder(c, true)
}

func (h *OrderHandler) getOrder(c echo.Context, asAdmin bool) error {
	caller, ok := actor(c, asAdmin)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), caller, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order))
}

// UpdateAddress changes delivery data until the order ships.
func (h *OrderHandler) UpdateAddress(c echo.Context) error {
	caller, ok := actor(c, false)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	var req OrderContactRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order address input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.orderUC.UpdateAddress(c.Request().Context(), caller, orderID, usecase.OrderContactInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order))
}

// UpdateStatus overwrites the status of one of the caller's orders.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	return h.updateStatus(c, false)
}

// UpdateAnyStatus overwrites the status of any order.
func (h *OrderHandler) UpdateAnyStatus(c echo.Context) error {
	return h.updateStatus(c, true)
}

func (h *OrderHandler) updateStatus(c echo.Context, asAdmin bool) error {
	caller, ok := actor(c, asAdmin)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.orderUC.UpdateStatus(c.Request().Context(), caller, orderID, req.StatusID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order))
}

// RepeatOrder places a copy of an existing order.
func (h *OrderHandler) RepeatOrder(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	order, err := h.orderUC.RepeatOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newOrderView(order))
}

// ListStatuses returns the status dictionary.
func (h *OrderHandler) ListStatuses(c echo.Context) error {
	statuses, err := h.orderUC.ListStatuses(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(statuses, newOrderStatusView))
}

// AddItem adds a product to an order with its current price.
func (h *OrderHandler) AddItem(c echo.Context) error {
	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	var req OrderItemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order item input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.orderUC.AddItem(c.Request().Context(), orderID, usecase.OrderItemInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newOrderView(order))
}

// UpdateItemAmount changes the amount of a line item.
func (h *OrderHandler) UpdateItemAmount(c echo.Context) error {
	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return invalidID(c, "order item")
	}

	var req SetAmountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid amount input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.orderUC.UpdateItemAmount(c.Request().Context(), orderID, itemID, req.Amount)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order))
}

// RemoveItem deletes a line item.
func (h *OrderHandler) RemoveItem(c echo.Context) error {
	orderID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return invalidID(c, "order item")
	}

	order, err := h.orderUC.RemoveItem(c.Request().Context(), orderID, itemID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order))
}
