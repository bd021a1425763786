package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"fireworks/internal/domain/entity"
	"fireworks/internal/infra/qrcode"
	"fireworks/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	answers  []tgbotapi.CallbackConfig
	updates  chan tgbotapi.Update
	sendErr  error
	stopCall int
}

func newFakeClient() *fakeClient {
	return &fakeClient{updates: make(chan tgbotapi.Update, 8)}
}

func (c *fakeClient) Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, chattable)

	return tgbotapi.Message{}, c.sendErr
}

func (c *fakeClient) Request(chattable tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if answer, ok := chattable.(tgbotapi.CallbackConfig); ok {
		c.answers = append(c.answers, answer)
	}

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (c *fakeClient) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.updates
}

func (c *fakeClient) StopReceivingUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCall++
}

func (c *fakeClient) messages(t *testing.T) []tgbotapi.MessageConfig {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]tgbotapi.MessageConfig, 0, len(c.sent))
	for _, chattable := range c.sent {
		if msg, ok := chattable.(tgbotapi.MessageConfig); ok {
			messages = append(messages, msg)
		}
	}

	return messages
}

func (c *fakeClient) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()

	messages := c.messages(t)
	require.NotEmpty(t, messages, "no message was sent")

	return messages[len(messages)-1]
}

// keyboardData flattens the callback payloads of an inline keyboard.
func keyboardData(t *testing.T, markup any) []string {
	t.Helper()

	keyboard, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "reply markup is %T", markup)

	var data []string
	for _, row := range keyboard.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
	}

	return data
}

// The mocks embed the usecase interface so only the methods a test needs are implemented.

type mockUserUsecase struct {
	usecase.UserUsecase
	mock.Mock
}

func (m *mockUserUsecase) EnsureTelegramUser(ctx context.Context, profile *entity.TelegramProfile) (*entity.User, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

type mockCatalogUsecase struct {
	usecase.CatalogUsecase
	mock.Mock
}

func (m *mockCatalogUsecase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Category), args.Error(1)
}

func (m *mockCatalogUsecase) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*entity.Product, error) {
	args := m.Called(ctx, id, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Product), args.Error(1)
}

type mockCartUsecase struct {
	usecase.CartUsecase
	mock.Mock
}

func (m *mockCartUsecase) AddItem(ctx context.Context, userID, productID uuid.UUID, amount int) (*usecase.CartOutput, error) {
	args := m.Called(ctx, userID, productID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.CartOutput), args.Error(1)
}

type mockOrderUsecase struct {
	usecase.OrderUsecase
	mock.Mock
}

func (m *mockOrderUsecase) CreateOrder(ctx context.Context, userID uuid.UUID, input usecase.OrderContactInput) (*entity.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Order), args.Error(1)
}

type mockFavoriteUsecase struct {
	usecase.FavoriteUsecase
	mock.Mock
}

func (m *mockFavoriteUsecase) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)

	return args.Bool(0), args.Error(1)
}

type botFixtures struct {
	client    *fakeClient
	users     *mockUserUsecase
	catalog   *mockCatalogUsecase
	carts     *mockCartUsecase
	orders    *mockOrderUsecase
	favorites *mockFavoriteUsecase
	handler   *Handler
	customer  *entity.User
}

const customerChatID int64 = 4242

func newBotFixtures(t *testing.T) *botFixtures {
	t.Helper()

	telegramID := customerChatID
	f := &botFixtures{
		client:    newFakeClient(),
		users:     &mockUserUsecase{},
		catalog:   &mockCatalogUsecase{},
		carts:     &mockCartUsecase{},
		orders:    &mockOrderUsecase{},
		favorites: &mockFavoriteUsecase{},
		customer:  &entity.User{ID: uuid.New(), TelegramID: &telegramID, FirstName: "Petr"},
	}
	f.users.On("EnsureTelegramUser", mock.Anything, mock.MatchedBy(func(p *entity.TelegramProfile) bool {
		return p.TelegramID == customerChatID
	})).Return(f.customer, nil).Maybe()

	f.handler = NewHandler(Usecases{
		User:     f.users,
		Catalog:  f.catalog,
		Cart:     f.carts,
		Order:    f.orders,
		Favorite: f.favorites,
		QRCodes:  qrcode.NewQRCodeService("fireworks_bot", 256, "M"),
	}, f.client, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return f
}

func (f *botFixtures) assertExpectations(t *testing.T) {
	t.Helper()

	f.users.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
	f.carts.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.favorites.AssertExpectations(t)
}

func commandUpdate(text string) tgbotapi.Update {
	length := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		length = i
	}

	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text:     text,
			From:     &tgbotapi.User{ID: customerChatID, FirstName: "Petr"},
			Chat:     &tgbotapi.Chat{ID: customerChatID},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
		},
	}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: customerChatID, FirstName: "Petr"},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: customerChatID}},
			Data:    data,
		},
	}
}
