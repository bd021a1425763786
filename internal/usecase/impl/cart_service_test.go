package impl

import (
	"context"
	"testing"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	srv := NewCartService(CartServiceParams{TxManager: store.txManager, CartRepo: store.carts, Logger: newDiscardLogger()})

	user := store.seedUser(t, nil)
	category := store.seedCategory(t, "Batteries")
	cake := store.seedProduct(t, category.ID, "Cake 100 shots", "49.90")
	sparkler := store.seedProduct(t, category.ID, "Sparkler", "0.50")

	cart, err := srv.AddItem(ctx, user.ID, cake.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = srv.AddItem(ctx, user.ID, cake.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "adding an existing product must not duplicate the row")
	assert.Equal(t, 3, cart.Items[0].Amount)

	cart, err = srv.AddItem(ctx, user.ID, sparkler.ID, 10)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, decimal.RequireFromString("154.70").Equal(cart.Total), "total was %s", cart.Total)
}

func TestCartService_AddItem_Rejections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	srv := NewCartService(CartServiceParams{TxManager: store.txManager, CartRepo: store.carts, Logger: newDiscardLogger()})

	user := store.seedUser(t, nil)
	product := store.seedProduct(t, store.seedCategory(t, "Petards").ID, "Korsar-6", "3.00")
	product.IsActive = false
	require.NoError(t, store.products.Update(ctx, product))

	_, err := srv.AddItem(ctx, user.ID, product.ID, 1)
	assert.True(t, errors.Is(err, domainerrors.ErrProductUnavailable))

	_, err = srv.AddItem(ctx, user.ID, uuid.New(), 1)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))

	_, err = srv.AddItem(ctx, user.ID, product.ID, 0)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	cart, err := srv.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestCartService_SetAmountRemoveClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	srv := NewCartService(CartServiceParams{TxManager: store.txManager, CartRepo: store.carts, Logger: newDiscardLogger()})

	user := store.seedUser(t, nil)
	category := store.seedCategory(t, "Rockets")
	rocket := store.seedProduct(t, category.ID, "Comet", "5.00")
	other := store.seedProduct(t, category.ID, "Meteor", "7.00")

	_, err := srv.AddItem(ctx, user.ID, rocket.ID, 1)
	require.NoError(t, err)
	_, err = srv.AddItem(ctx, user.ID, other.ID, 1)
	require.NoError(t, err)

	cart, err := srv.SetAmount(ctx, user.ID, rocket.ID, 4)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("27.00").Equal(cart.Total))

	_, err = srv.SetAmount(ctx, user.ID, uuid.New(), 4)
	assert.True(t, errors.Is(err, domainerrors.ErrCartItemNotFound))

	cart, err = srv.RemoveItem(ctx, user.ID, other.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, rocket.ID, cart.Items[0].ProductID)

	_, err = srv.RemoveItem(ctx, user.ID, other.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrCartItemNotFound))

	require.NoError(t, srv.Clear(ctx, user.ID))
	cart, err = srv.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestFavoriteService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	srv := NewFavoriteService(FavoriteServiceParams{TxManager: store.txManager, FavoriteRepo: store.favorites, Logger: newDiscardLogger()})

	user := store.seedUser(t, nil)
	product := store.seedProduct(t, store.seedCategory(t, "Fountains").ID, "Etna", "11.00")

	favorite, err := srv.Add(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, favorite.ProductID)

	_, err = srv.Add(ctx, user.ID, product.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrFavoriteAlreadyExists))

	_, err = srv.Add(ctx, user.ID, uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))

	favorites, err := srv.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	added, err := srv.Toggle(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, added)

	added, err = srv.Toggle(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, added)

	require.NoError(t, srv.Remove(ctx, user.ID, product.ID))
	err = srv.Remove(ctx, user.ID, product.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrFavoriteNotFound))
}

func TestAddressService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	srv := NewAddressService(AddressServiceParams{TxManager: store.txManager, AddressRepo: store.addresses, Logger: newDiscardLogger()})

	owner := store.seedUser(t, nil)
	stranger := store.seedUser(t, nil)

	_, err := srv.Create(ctx, owner.ID, usecase.AddressInput{Label: "Home"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	address, err := srv.Create(ctx, owner.ID, usecase.AddressInput{Label: "Dacha", FullAddress: "SNT Rassvet, 12", Comment: "Call at the gate"})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, address.UserID)

	_, err = srv.Get(ctx, stranger.ID, address.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrAddressNotFound))

	updated, err := srv.Update(ctx, owner.ID, address.ID, usecase.AddressInput{Label: "Dacha", FullAddress: "SNT Rassvet, 14"})
	require.NoError(t, err)
	assert.Equal(t, "SNT Rassvet, 14", updated.FullAddress)

	_, err = srv.Update(ctx, stranger.ID, address.ID, usecase.AddressInput{FullAddress: "hijack"})
	assert.True(t, errors.Is(err, domainerrors.ErrAddressNotFound))

	order := &entity.Order{UserID: owner.ID, StatusID: entity.OrderStatusCreatedID, AddressID: &address.ID}
	require.NoError(t, store.orders.Create(ctx, order))

	assert.True(t, errors.Is(srv.Delete(ctx, stranger.ID, address.ID), domainerrors.ErrAddressNotFound))
	require.NoError(t, srv.Delete(ctx, owner.ID, address.ID))

	addresses, err := srv.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, addresses)

	detached, err := store.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.AddressID)
}
