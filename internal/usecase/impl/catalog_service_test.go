package impl

import (
	"bytes"
	"context"
	"testing"
	"time"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/infra/qrcode"
	"fireworks/internal/infra/search"
	"fireworks/internal/infra/storage"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

type catalogFixtures struct {
	store   *testStore
	images  service.ImageStorage
	service usecase.CatalogUsecase
}

func createTestCatalogService(t *testing.T) catalogFixtures {
	store := newTestStore(t)
	images := storage.NewBlobStorage(memblob.OpenBucket(nil))

	return catalogFixtures{
		store:  store,
		images: images,
		service: NewCatalogService(CatalogServiceParams{
			TxManager:    store.txManager,
			CategoryRepo: store.categories,
			ProductRepo:  store.products,
			TagRepo:      store.tags,
			Searcher:     search.NewSQLSearcher(store.products),
			Images:       images,
			QRCodes:      qrcode.NewQRCodeService("fireworks_bot", 256, "M"),
			Logger:       newDiscardLogger(),
		}),
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	category, err := f.service.CreateCategory(ctx, usecase.CategoryInput{Name: " Rockets "})
	require.NoError(t, err)
	assert.Equal(t, "Rockets", category.Name)

	product, err := f.service.CreateProduct(ctx, usecase.ProductInput{
		CategoryID: category.ID,
		Name:       "Sky Lantern",
		Price:      decimal.RequireFromString("12.345"),
		IsActive:   true,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.35").Equal(product.Price))

	_, err = f.service.CreateProduct(ctx, usecase.ProductInput{CategoryID: uuid.New(), Name: "Orphan", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))

	_, err = f.service.CreateProduct(ctx, usecase.ProductInput{CategoryID: category.ID, Name: "Cheap", Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestCatalogService_GetProduct_HidesInactive(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	category := f.store.seedCategory(t, "Petards")
	product := f.store.seedProduct(t, category.ID, "Corsair", "2.00")
	product.IsActive = false
	require.NoError(t, f.store.products.Update(ctx, product))

	_, err := f.service.GetProduct(ctx, product.ID, false)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))

	found, err := f.service.GetProduct(ctx, product.ID, true)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	list, err := f.service.ListProducts(ctx, usecase.ProductListInput{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCatalogService_SearchProducts(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	category := f.store.seedCategory(t, "Fountains")
	volcano := f.store.seedProduct(t, category.ID, "Golden Volcano", "9.00")
	f.store.seedProduct(t, category.ID, "Silver Rain", "4.00")

	result, err := f.service.SearchProducts(ctx, "volcano", usecase.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, volcano.ID, result.Products[0].ID)

	all, err := f.service.SearchProducts(ctx, "  ", usecase.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
}

func TestCatalogService_DeleteCategory_InUse(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	used := f.store.seedCategory(t, "Batteries")
	f.store.seedProduct(t, used.ID, "Cake 49", "30.00")
	empty := f.store.seedCategory(t, "Empty")

	err := f.service.DeleteCategory(ctx, used.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryInUse))

	require.NoError(t, f.service.DeleteCategory(ctx, empty.ID))
	_, err = f.service.GetCategory(ctx, empty.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrCategoryNotFound))
}

func TestCatalogService_DeleteProduct_Cascades(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	user := f.store.seedUser(t, nil)
	category := f.store.seedCategory(t, "Rockets")
	product := f.store.seedProduct(t, category.ID, "Comet", "15.00")
	tag := f.store.seedTag(t, "night")
	require.NoError(t, f.store.products.SetTags(ctx, product.ID, []uuid.UUID{tag.ID}))

	_, err := f.store.carts.AddOrIncrement(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.store.favorites.Create(ctx, &entity.Favorite{UserID: user.ID, ProductID: product.ID}))

	productID := product.ID
	order := &entity.Order{
		UserID:   user.ID,
		StatusID: entity.OrderStatusCreatedID,
		Items: []*entity.OrderLineItem{{
			ProductID:    &productID,
			ProductName:  product.Name,
			Amount:       2,
			PricePerUnit: product.Price,
		}},
	}
	require.NoError(t, f.store.orders.Create(ctx, order))

	require.NoError(t, f.service.DeleteProduct(ctx, product.ID))

	_, err = f.service.GetProduct(ctx, product.ID, true)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))

	cart, err := f.store.carts.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	favorites, err := f.store.favorites.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	kept, err := f.store.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, kept.Items, 1)
	assert.Nil(t, kept.Items[0].ProductID)
	assert.Equal(t, "Comet", kept.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("30.00").Equal(kept.Total))

	err = f.service.DeleteProduct(ctx, product.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
}

func TestCatalogService_SetProductTags(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	product := f.store.seedProduct(t, f.store.seedCategory(t, "Sparklers").ID, "Bengal", "1.00")
	tag, err := f.service.CreateTag(ctx, "kids")
	require.NoError(t, err)

	updated, err := f.service.SetProductTags(ctx, product.ID, []uuid.UUID{tag.ID})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "kids", updated.Tags[0].Name)

	_, err = f.service.SetProductTags(ctx, product.ID, []uuid.UUID{uuid.New()})
	assert.True(t, errors.Is(err, domainerrors.ErrTagNotFound))

	_, err = f.service.CreateTag(ctx, "kids")
	assert.True(t, errors.Is(err, domainerrors.ErrTagAlreadyExists))
}

func TestCatalogService_UploadProductImage(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	product := f.store.seedProduct(t, f.store.seedCategory(t, "Rockets").ID, "Comet", "15.00")
	first := []byte("\x89PNG first")
	second := []byte("\x89PNG second")

	updated, err := f.service.UploadProductImage(ctx, product.ID, usecase.ImageUpload{Data: first, ContentType: "image/png"})
	require.NoError(t, err)
	require.NotNil(t, updated.ImageKey)
	firstKey := *updated.ImageKey

	updated, err = f.service.UploadProductImage(ctx, product.ID, usecase.ImageUpload{Data: second, ContentType: "image/png"})
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, *updated.ImageKey)

	data, err := f.service.GetImage(ctx, *updated.ImageKey)
	require.NoError(t, err)
	assert.Equal(t, second, data)

	_, err = f.service.GetImage(ctx, firstKey)
	assert.True(t, errors.Is(err, domainerrors.ErrImageNotFound))

	_, err = f.service.UploadProductImage(ctx, product.ID, usecase.ImageUpload{Data: bytes.Repeat([]byte{1}, maxImageSize+1), ContentType: "image/png"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestCatalogService_ProductQRCode(t *testing.T) {
	f := createTestCatalogService(t)
	ctx := context.Background()

	product := f.store.seedProduct(t, f.store.seedCategory(t, "Rockets").ID, "Comet", "15.00")

	png, err := f.service.ProductQRCode(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestDiscountService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	srv := NewDiscountService(DiscountServiceParams{
		DiscountRepo: store.discounts,
		Images:       storage.NewBlobStorage(memblob.OpenBucket(nil)),
		Logger:       newDiscardLogger(),
	})

	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	running, err := srv.CreateDiscount(ctx, usecase.DiscountInput{Title: "Winter", StartsAt: now.Add(-24 * time.Hour), IsActive: true})
	require.NoError(t, err)
	_, err = srv.CreateDiscount(ctx, usecase.DiscountInput{Title: "Expired", StartsAt: now.Add(-48 * time.Hour), EndsAt: &past, IsActive: true})
	require.NoError(t, err)
	_, err = srv.CreateDiscount(ctx, usecase.DiscountInput{Title: "Draft", StartsAt: now.Add(-time.Hour), IsActive: false})
	require.NoError(t, err)

	_, err = srv.CreateDiscount(ctx, usecase.DiscountInput{Title: "Backwards", StartsAt: now, EndsAt: &past})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	visible, err := srv.ListRunning(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, running.ID, visible[0].ID)

	all, err := srv.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, srv.DeleteDiscount(ctx, running.ID))
	_, err = srv.GetDiscount(ctx, running.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrDiscountNotFound))
}
