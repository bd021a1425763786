package impl

import (
	"context"
	"log/slog"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// cartService implements the CartUsecase interface.
type cartService struct {
	txManager repository.TransactionManager
	cartRepo  repository.CartRepository
	logger    *slog.Logger
}

// CartServiceParams holds dependencies for CartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	CartRepo  repository.CartRepository
	Logger    *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		txManager: params.TxManager,
		cartRepo:  params.CartRepo,
		logger:    params.Logger,
	}
}

func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*usecase.CartOutput, error) {
	items, err := srv.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cart")
	}

	return newCartOutput(items), nil
}

// AddItem inserts the product or increments the amount of the existing row.
func (srv *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, amount int) (*usecase.CartOutput, error) {
	if amount < 1 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("amount must be at least 1")
	}

	var cart *usecase.CartOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		product, err := repoFactory.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return domainerrors.ErrProductUnavailable
		}

		cartRepo := repoFactory.CartRepo()
		if _, err := cartRepo.AddOrIncrement(ctx, userID, productID, amount); err != nil {
			return err
		}

		items, err := cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		cart = newCartOutput(items)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add cart item")
	}

	srv.log(ctx).Debug("Cart item added", slog.Any("userID", userID), slog.Any("productID", productID), slog.Int("amount", amount))

	return cart, nil
}

func (srv *cartService) SetAmount(ctx context.Context, userID, productID uuid.UUID, amount int) (*usecase.CartOutput, error) {
	if amount < 1 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("amount must be at least 1")
	}

	return srv.mutate(ctx, userID, "failed to set cart amount", func(cartRepo repository.CartRepository) error {
		_, err := cartRepo.SetAmount(ctx, userID, productID, amount)

		return err
	})
}

func (srv *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*usecase.CartOutput, error) {
	return srv.mutate(ctx, userID, "failed to remove cart item", func(cartRepo repository.CartRepository) error {
		return cartRepo.Remove(ctx, userID, productID)
	})
}

func (srv *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := srv.cartRepo.Clear(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to clear cart")
	}

	return nil
}

func (srv *cartService) mutate(ctx context.Context, userID uuid.UUID, failMsg string, fn func(cartRepo repository.CartRepository) error) (*usecase.CartOutput, error) {
	var cart *usecase.CartOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.CartRepo()
		if err := fn(cartRepo); err != nil {
			return err
		}

		items, err := cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		cart = newCartOutput(items)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, failMsg)
	}

	return cart, nil
}

func newCartOutput(items []*entity.CartItem) *usecase.CartOutput {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return &usecase.CartOutput{Items: items, Total: total}
}

// favoriteService implements the FavoriteUsecase interface.
type favoriteService struct {
	txManager    repository.TransactionManager
	favoriteRepo repository.FavoriteRepository
	logger       *slog.Logger
}

// FavoriteServiceParams holds dependencies for FavoriteService, injected by Fx.
type FavoriteServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	FavoriteRepo repository.FavoriteRepository
	Logger       *slog.Logger
}

// NewFavoriteService is the constructor for favoriteService.
func NewFavoriteService(params FavoriteServiceParams) usecase.FavoriteUsecase {
	return &favoriteService{
		txManager:    params.TxManager,
		favoriteRepo: params.FavoriteRepo,
		logger:       params.Logger,
	}
}

func (srv *favoriteService) List(ctx context.Context, userID uuid.UUID) ([]*entity.Favorite, error) {
	favorites, err := srv.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list favorites")
	}

	return favorites, nil
}

// Add fails with ErrFavoriteAlreadyExists when the product is already a favorite.
func (srv *favoriteService) Add(ctx context.Context, userID, productID uuid.UUID) (*entity.Favorite, error) {
	var favorite *entity.Favorite
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		product, err := repoFactory.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		favorite = &entity.Favorite{UserID: userID, ProductID: productID, Product: product}

		return repoFactory.FavoriteRepo().Create(ctx, favorite)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add favorite")
	}

	return favorite, nil
}

func (srv *favoriteService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := srv.favoriteRepo.Delete(ctx, userID, productID); err != nil {
		return errors.Wrap(err, "failed to remove favorite")
	}

	return nil
}

func (srv *favoriteService) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	exists, err := srv.favoriteRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check favorite")
	}

	if exists {
		return false, srv.Remove(ctx, userID, productID)
	}

	if _, err := srv.Add(ctx, userID, productID); err != nil {
		return false, err
	}

	return true, nil
}

// addressService implements the AddressUsecase interface.
type addressService struct {
	txManager   repository.TransactionManager
	addressRepo repository.AddressRepository
	logger      *slog.Logger
}

// AddressServiceParams holds dependencies for AddressService, injected by Fx.
type AddressServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AddressRepo repository.AddressRepository
	Logger      *slog.Logger
}

// NewAddressService is the constructor for addressService.
func NewAddressService(params AddressServiceParams) usecase.AddressUsecase {
	return &addressService{
		txManager:   params.TxManager,
		addressRepo: params.AddressRepo,
		logger:      params.Logger,
	}
}

func (srv *addressService) List(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error) {
	addresses, err := srv.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list addresses")
	}

	return addresses, nil
}

func (srv *addressService) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Address, error) {
	address, err := srv.addressRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get address")
	}

	return address, nil
}

// Create fails with ErrAddressAlreadyExists when the user already saved the same full address.
func (srv *addressService) Create(ctx context.Context, userID uuid.UUID, input usecase.AddressInput) (*entity.Address, error) {
	if err := validateAddressInput(input); err != nil {
		return nil, err
	}

	address := &entity.Address{
		UserID:      userID,
		Label:       input.Label,
		FullAddress: input.FullAddress,
		Comment:     input.Comment,
	}
	if err := srv.addressRepo.Create(ctx, address); err != nil {
		return nil, errors.Wrap(err, "failed to create address")
	}

	return address, nil
}

func (srv *addressService) Update(ctx context.Context, userID, id uuid.UUID, input usecase.AddressInput) (*entity.Address, error) {
	if err := validateAddressInput(input); err != nil {
		return nil, err
	}

	var updated *entity.Address
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		addressRepo := repoFactory.AddressRepo()

		address, err := addressRepo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}

		address.Label = input.Label
		address.FullAddress = input.FullAddress
		address.Comment = input.Comment
		if err := addressRepo.Update(ctx, address); err != nil {
			return err
		}
		updated = address

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update address")
	}

	return updated, nil
}

// Delete removes the address. Orders that pointed to it keep their contact data without an address.
func (srv *addressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.AddressRepo().Delete(ctx, userID, id)
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete address")
	}

	return nil
}

func validateAddressInput(input usecase.AddressInput) error {
	if input.FullAddress == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("full address is required")
	}

	return nil
}
