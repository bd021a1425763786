package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	apimiddleware "fireworks/internal/delivery/api/middleware"
	"fireworks/internal/delivery/api/validator"
	"fireworks/internal/domain/entity"
	"fireworks/internal/domain/service"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTokens accepts "Bearer <uuid>" and "Bearer admin:<uuid>".
type stubTokens struct{}

func (stubTokens) GenerateAccessToken(uuid.UUID, []string) (string, error) { return "", nil }
func (stubTokens) AccessTokenTTL() time.Duration { return 0 }
func (stubTokens) NewRefreshToken() (string, error) { return "", nil }

func (stubTokens) ValidateToken(token string) (*service.Claims, error) {
	roles := []string{entity.RoleUser.String()}
	if rest, ok := strings.CutPrefix(token, "admin:"); ok {
		token = rest
		roles = append(roles, entity.RoleAdmin.String())
	}

	userID, err := uuid.Parse(token)
	if err != nil {
		return nil, err
	}

	return &service.Claims{UserID: userID, Roles: roles}, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(discardLogger()).HandleHTTPError

	return e
}

func newTestAuth() *apimiddleware.AuthMiddleware {
	return apimiddleware.NewAuthMiddleware(stubTokens{}, discardLogger())
}

func doRequest(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

type mockOrderUsecase struct {
	mock.Mock
}

func (m *mockOrderUsecase) CreateOrder(ctx context.Context, userID uuid.UUID, input usecase.OrderContactInput) (*entity.Order, error) {
	args := m.Called(ctx, userID, input)

	return orderResult(args)
}

func (m *mockOrderUsecase) GetOrder(ctx context.Context, actor usecase.Actor, orderID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, actor, orderID)

	return orderResult(args)
}

func (m *mockOrderUsecase) ListOrders(ctx context.Context, actor usecase.Actor, input usecase.OrderListInput) (*usecase.OrderListOutput, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.OrderListOutput), args.Error(1)
}

func (m *mockOrderUsecase) UpdateAddress(ctx context.Context, actor usecase.Actor, orderID uuid.UUID, input usecase.OrderContactInput) (*entity.Order, error) {
	args := m.Called(ctx, actor, orderID, input)

	return orderResult(args)
}

func (m *mockOrderUsecase) UpdateStatus(ctx context.Context, actor usecase.Actor, orderID uuid.UUID, statusID int) (*entity.Order, error) {
	args := m.Called(ctx, actor, orderID, statusID)

	return orderResult(args)
}

func (m *mockOrderUsecase) RepeatOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, userID, orderID)

	return orderResult(args)
}

func (m *mockOrderUsecase) ListStatuses(ctx context.Context) ([]*entity.OrderStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.OrderStatus), args.Error(1)
}

func (m *mockOrderUsecase) AddItem(ctx context.Context, orderID uuid.UUID, input usecase.OrderItemInput) (*entity.Order, error) {
	args := m.Called(ctx, orderID, input)

	return orderResult(args)
}

func (m *mockOrderUsecase) UpdateItemAmount(ctx context.Context, orderID, itemID uuid.UUID, amount int) (*entity.Order, error) {
	args := m.Called(ctx, orderID, itemID, amount)

	return orderResult(args)
}

func (m *mockOrderUsecase) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, orderID, itemID)

	return orderResult(args)
}

func orderResult(args mock.Arguments) (*entity.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Order), args.Error(1)
}

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Login(ctx context.Context, input usecase.LoginInput) (*usecase.TokenOutput, error) {
	args := m.Called(ctx, input)

	return tokenResult(args)
}

func (m *mockAuthUsecase) LoginTelegram(ctx context.Context, fields map[string]string) (*usecase.TokenOutput, error) {
	args := m.Called(ctx, fields)

	return tokenResult(args)
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, refreshToken string) (*usecase.TokenOutput, error) {
	args := m.Called(ctx, refreshToken)

	return tokenResult(args)
}

func (m *mockAuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func tokenResult(args mock.Arguments) (*usecase.TokenOutput, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.TokenOutput), args.Error(1)
}

type mockCartUsecase struct {
	mock.Mock
}

func (m *mockCartUsecase) GetCart(ctx context.Context, userID uuid.UUID) (*usecase.CartOutput, error) {
	args := m.Called(ctx, userID)

	return cartResult(args)
}

func (m *mockCartUsecase) AddItem(ctx context.Context, userID, productID uuid.UUID, amount int) (*usecase.CartOutput, error) {
	args := m.Called(ctx, userID, productID, amount)

	return cartResult(args)
}

func (m *mockCartUsecase) SetAmount(ctx context.Context, userID, productID uuid.UUID, amount int) (*usecase.CartOutput, error) {
	args := m.Called(ctx, userID, productID, amount)

	return cartResult(args)
}

func (m *mockCartUsecase) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*usecase.CartOutput, error) {
	args := m.Called(ctx, userID, productID)

	return cartResult(args)
}

func (m *mockCartUsecase) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func cartResult(args mock.Arguments) (*usecase.CartOutput, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.CartOutput), args.Error(1)
}

