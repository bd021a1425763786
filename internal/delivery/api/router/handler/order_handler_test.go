package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
		Page      *struct {
			Total int64 `json:"total"`
			Limit int   `json:"limit"`
		} `json:"page"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())

	return body
}

func newOrderTestServer(uc *mockOrderUsecase) *echo.Echo {
	e := newTestEcho()
	auth := newTestAuth()
	h := NewOrderHandler(OrderHandlerParams{OrderUC: uc, Logger: discardLogger()})

	customer := e.Group("/api/v1/orders", auth.Authenticate)
	customer.GET("", h.ListOrders)
	customer.POST("", h.CreateOrder)
	customer.GET("/:id", h.GetOrder)
	customer.PUT("/:id/address", h.UpdateAddress)
	customer.PUT("/:id/status", h.UpdateStatus)

	admin := e.Group("/api/v1/admin/orders", auth.Authenticate, auth.RequireRole(entity.RoleAdmin))
	admin.GET("", h.ListAllOrders)
	admin.POST("/:id/items", h.AddItem)
	admin.PATCH("/:id/items/:itemId", h.UpdateItemAmount)
	admin.DELETE("/:id/items/:itemId", h.RemoveItem)

	return e
}

func sampleOrder(userID uuid.UUID) *entity.Order {
	productID := uuid.New()

	return &entity.Order{
		ID:       uuid.New(),
		UserID:   userID,
		StatusID: entity.OrderStatusCreatedID,
		Status:   &entity.OrderStatus{ID: entity.OrderStatusCreatedID, Text: entity.OrderStatusCreated},
		FIO:      "Ivan Petrov",
		Total:    decimal.RequireFromString("12.5"),
		Items: []*entity.OrderLineItem{{
			ID:           uuid.New(),
			ProductID:    &productID,
			ProductName:  "Comet",
			Amount:       5,
			PricePerUnit: decimal.RequireFromString("2.5"),
		}},
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	uc := &mockOrderUsecase{}
	e := newOrderTestServer(uc)
	userID := uuid.New()

	uc.On("CreateOrder", mock.Anything, userID, usecase.OrderContactInput{FIO: "Ivan Petrov", Phone: "+79990000000", OperatorCall: true}).
		Return(sampleOrder(userID), nil).Once()

	rec := doRequest(e, http.MethodPost, "/api/v1/orders", userID.String(), `{"fio":"Ivan Petrov","phone":"+79990000000","operator_call":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order OrderView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &order))
	assert.Equal(t, "12.50", order.Total)
	assert.Equal(t, entity.OrderStatusCreated, order.Status.Text)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "12.50", order.Items[0].Subtotal)
	uc.AssertExpectations(t)
}

func TestOrderHandler_DomainErrors(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	tests := []struct {
		name     string
		setup    func(uc *mockOrderUsecase)
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name: "empty cart",
			setup: func(uc *mockOrderUsecase) {
				uc.On("CreateOrder", mock.Anything, userID, mock.Anything).Return(nil, errors.WithStack(domainerrors.ErrCartEmpty))
			},
			method:   http.MethodPost,
			target:   "/api/v1/orders",
			body:     `{}`,
			wantCode: domainerrors.ErrCartEmpty.HTTPCode(),
			wantErr:  "CART_EMPTY",
		},
		{
			name: "shipped order",
			setup: func(uc *mockOrderUsecase) {
				uc.On("UpdateAddress", mock.Anything, usecase.Actor{UserID: userID}, orderID, mock.Anything).Return(nil, domainerrors.ErrOrderAlreadyShipped)
			},
			method:   http.MethodPut,
			target:   "/api/v1/orders/" + orderID.String() + "/address",
			body:     `{"fio":"Ivan"}`,
			wantCode: http.StatusForbidden,
			wantErr:  "ORDER_ALREADY_SHIPPED",
		},
		{
			name: "unknown status",
			setup: func(uc *mockOrderUsecase) {
				uc.On("UpdateStatus", mock.Anything, usecase.Actor{UserID: userID}, orderID, 42).Return(nil, domainerrors.ErrOrderStatusNotFound)
			},
			method:   http.MethodPut,
			target:   "/api/v1/orders/" + orderID.String() + "/status",
			body:     `{"status_id":42}`,
			wantCode: http.StatusNotFound,
			wantErr:  "ORDER_STATUS_NOT_FOUND",
		},
		{
			name:     "invalid order id",
			setup:    func(*mockOrderUsecase) {},
			method:   http.MethodGet,
			target:   "/api/v1/orders/not-a-uuid",
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_ID",
		},
		{
			name:     "missing status id",
			setup:    func(*mockOrderUsecase) {},
			method:   http.MethodPut,
			target:   "/api/v1/orders/" + orderID.String() + "/status",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name: "unexpected failure is hidden",
			setup: func(uc *mockOrderUsecase) {
				uc.On("GetOrder", mock.Anything, mock.Anything, orderID).Return(nil, errors.New("connection reset by peer"))
			},
			method:   http.MethodGet,
			target:   "/api/v1/orders/" + orderID.String(),
			wantCode: http.StatusInternalServerError,
			wantErr:  "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockOrderUsecase{}
			tt.setup(uc)
			e := newOrderTestServer(uc)

			rec := doRequest(e, tt.method, tt.target, userID.String(), tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			body := decodeEnvelope(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantErr, body.Error.Code)
			assert.NotContains(t, rec.Body.String(), "connection reset")
			uc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_AdminScope(t *testing.T) {
	uc := &mockOrderUsecase{}
	e := newOrderTestServer(uc)
	adminID := uuid.New()
	adminToken := "admin:" + adminID.String()

	// Customer routes never act with admin rights, even for staff.
	uc.On("ListOrders", mock.Anything, usecase.Actor{UserID: adminID}, mock.Anything).
		Return(&usecase.OrderListOutput{}, nil).Once()
	rec := doRequest(e, http.MethodGet, "/api/v1/orders", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	shipped := entity.OrderStatusShippedID
	uc.On("ListOrders", mock.Anything, usecase.Actor{UserID: adminID, IsAdmin: true}, usecase.OrderListInput{
		StatusID: &shipped,
		Page:     usecase.Page{Limit: 5, Offset: 10},
	}).Return(&usecase.OrderListOutput{Orders: []*entity.Order{sampleOrder(uuid.New())}, Total: 11}, nil).Once()

	rec = doRequest(e, http.MethodGet, "/api/v1/admin/orders?status_id=3&limit=5&offset=10", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	require.NotNil(t, body.Meta.Page)
	assert.EqualValues(t, 11, body.Meta.Page.Total)
	assert.Equal(t, 5, body.Meta.Page.Limit)
	uc.AssertExpectations(t)
}

func TestOrderHandler_AdminRoutesRequireRole(t *testing.T) {
	uc := &mockOrderUsecase{}
	e := newOrderTestServer(uc)

	rec := doRequest(e, http.MethodGet, "/api/v1/admin/orders", uuid.NewString(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	uc.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_AdminLineItems(t *testing.T) {
	uc := &mockOrderUsecase{}
	e := newOrderTestServer(uc)
	orderID := uuid.New()
	itemID := uuid.New()
	productID := uuid.New()
	token := "admin:" + uuid.NewString()

	uc.On("AddItem", mock.Anything, orderID, usecase.OrderItemInput{ProductID: productID, Amount: 2}).Return(sampleOrder(uuid.New()), nil).Once()
	uc.On("UpdateItemAmount", mock.Anything, orderID, itemID, 7).Return(sampleOrder(uuid.New()), nil).Once()
	uc.On("RemoveItem", mock.Anything, orderID, itemID).Return(nil, domainerrors.ErrOrderItemNotFound).Once()

	base := "/api/v1/admin/orders/" + orderID.String() + "/items"
	rec := doRequest(e, http.MethodPost, base, token, `{"product_id":"`+productID.String()+`","amount":2}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(e, http.MethodPatch, base+"/"+itemID.String(), token, `{"amount":7}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(e, http.MethodDelete, base+"/"+itemID.String(), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ORDER_ITEM_NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
	uc.AssertExpectations(t)
}
