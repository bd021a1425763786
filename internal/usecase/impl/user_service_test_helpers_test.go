package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fireworks/config"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/domain/service"
	"fireworks/internal/infra/persistence/postgres"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost: 4,
			AccessTTL:  300 * time.Second,
			RefreshTTL: time.Hour,
		},
		Newsletter: &config.NewsletterConfig{
			PollInterval: time.Minute,
			ClaimTimeout: 30 * time.Minute,
			BatchSize:    10,
		},
	}
	cfg.SecretKey.Access = "test-access-secret"

	return cfg
}

// testStore bundles an in-memory SQLite database with the repositories built on it.
type testStore struct {
	db          *gorm.DB
	txManager   repository.TransactionManager
	users       repository.UserRepository
	categories  repository.CategoryRepository
	tags        repository.TagRepository
	products    repository.ProductRepository
	discounts   repository.DiscountRepository
	carts       repository.CartRepository
	favorites   repository.FavoriteRepository
	addresses   repository.AddressRepository
	orders      repository.OrderRepository
	newsletters repository.NewsletterRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.Migrate(db))

	return &testStore{
		db:          db,
		txManager:   postgres.NewTransactionManager(db),
		users:       postgres.NewUserRepository(db),
		categories:  postgres.NewCategoryRepository(db),
		tags:        postgres.NewTagRepository(db),
		products:    postgres.NewProductRepository(db),
		discounts:   postgres.NewDiscountRepository(db),
		carts:       postgres.NewCartRepository(db),
		favorites:   postgres.NewFavoriteRepository(db),
		addresses:   postgres.NewAddressRepository(db),
		orders:      postgres.NewOrderRepository(db),
		newsletters: postgres.NewNewsletterRepository(db),
	}
}

var nextTelegramID atomic.Int64

func (s *testStore) seedUser(t *testing.T, mutate func(u *entity.User)) *entity.User {
	t.Helper()

	telegramID := nextTelegramID.Add(1)
	user := &entity.User{TelegramID: &telegramID, FirstName: "Ivan"}
	if mutate != nil {
		mutate(user)
	}
	require.NoError(t, s.users.Create(context.Background(), user))

	return user
}

func (s *testStore) seedCategory(t *testing.T, name string) *entity.Category {
	t.Helper()

	category := &entity.Category{Name: name}
	require.NoError(t, s.categories.Create(context.Background(), category))

	return category
}

func (s *testStore) seedProduct(t *testing.T, categoryID uuid.UUID, name, price string) *entity.Product {
	t.Helper()

	product := &entity.Product{
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		IsActive:   true,
	}
	require.NoError(t, s.products.Create(context.Background(), product))

	return product
}

func (s *testStore) seedTag(t *testing.T, name string) *entity.Tag {
	t.Helper()

	tag := &entity.Tag{Name: name}
	require.NoError(t, s.tags.Create(context.Background(), tag))

	return tag
}

// memoryTokenStore is a RefreshTokenStore backed by a map.
type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]uuid.UUID)}
}

func (s *memoryTokenStore) Save(_ context.Context, token string, userID uuid.UUID, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID

	return nil
}

func (s *memoryTokenStore) Find(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, domainerrors.ErrRefreshTokenInvalid
	}

	return userID, nil
}

func (s *memoryTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)

	return nil
}

type mockOrderEventPublisher struct {
	mock.Mock
}

func (m *mockOrderEventPublisher) PublishOrderEvent(ctx context.Context, event *service.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockOrderEventPublisher) Close() error {
	return m.Called().Error(0)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishNewsletterEvent(ctx context.Context, event *service.NewsletterEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventPublisher) Close() error {
	return m.Called().Error(0)
}

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.Called(ctx, chatID, text).Error(0)
}

func (m *mockMessenger) SendPhoto(ctx context.Context, chatID int64, image []byte, fileName, caption string) error {
	return m.Called(ctx, chatID, image, fileName, caption).Error(0)
}

type mockTelegramVerifier struct {
	mock.Mock
}

func (m *mockTelegramVerifier) Verify(fields map[string]string) (*entity.TelegramProfile, error) {
	args := m.Called(fields)
	profile, _ := args.Get(0).(*entity.TelegramProfile)

	return profile, args.Error(1)
}
