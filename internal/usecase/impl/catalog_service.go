package impl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	txManager    repository.TransactionManager
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	tagRepo      repository.TagRepository
	searcher     service.ProductSearcher
	images       service.ImageStorage
	qrCodes      service.QRCodeService
	logger       *slog.Logger
}

// CatalogServiceParams holds dependencies for CatalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	TagRepo      repository.TagRepository
	Searcher     service.ProductSearcher
	Images       service.ImageStorage
	QRCodes      service.QRCodeService
	Logger       *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		txManager:    params.TxManager,
		categoryRepo: params.CategoryRepo,
		productRepo:  params.ProductRepo,
		tagRepo:      params.TagRepo,
		searcher:     params.Searcher,
		images:       params.Images,
		qrCodes:      params.QRCodes,
		logger:       params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// --- Categories ---

func (srv *catalogService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := srv.categoryRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

func (srv *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get category")
	}

	return category, nil
}

func (srv *catalogService) CreateCategory(ctx context.Context, input usecase.CategoryInput) (*entity.Category, error) {
	category := &entity.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		SortOrder:   input.SortOrder,
	}
	if category.Name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("category name is required")
	}

	if err := srv.categoryRepo.Create(ctx, category); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}

	srv.log(ctx).Info("Category created", slog.Any("categoryID", category.ID), slog.String("name", category.Name))

	return category, nil
}

func (srv *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input usecase.CategoryInput) (*entity.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("category name is required")
	}

	var updated *entity.Category
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		category, err := categoryRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		category.Name = name
		category.Description = input.Description
		category.SortOrder = input.SortOrder
		if err := categoryRepo.Update(ctx, category); err != nil {
			return err
		}
		updated = category

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}

	return updated, nil
}

// DeleteCategory refuses to delete a category that still holds products.
func (srv *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.CategoryRepo().FindByID(ctx, id); err != nil {
			return err
		}

		count, err := repoFactory.ProductRepo().CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrCategoryInUse.WrapMessage(strconv.FormatInt(count, 10) + " products reference the category")
		}

		return repoFactory.CategoryRepo().Delete(ctx, id)
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete category")
	}

	srv.log(ctx).Info("Category deleted", slog.Any("categoryID", id))

	return nil
}

// --- Products ---

func (srv *catalogService) ListProducts(ctx context.Context, input usecase.ProductListInput) (*usecase.ProductListOutput, error) {
	products, total, err := srv.productRepo.List(ctx, repository.ProductFilter{
		CategoryID:  input.CategoryID,
		ActiveOnly:  !input.IncludeInactive,
		ListOptions: repository.ListOptions{Limit: input.Limit, Offset: input.Offset},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return &usecase.ProductListOutput{Products: products, Total: total}, nil
}

// GetProduct hides inactive products from customers.
func (srv *catalogService) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product")
	}
	if !product.IsActive && !includeInactive {
		return nil, domainerrors.ErrProductNotFound
	}

	return product, nil
}

// SearchProducts resolves searcher hits to active products, keeping relevance order.
func (srv *catalogService) SearchProducts(ctx context.Context, query string, page usecase.Page) (*usecase.ProductListOutput, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return srv.ListProducts(ctx, usecase.ProductListInput{Page: page})
	}

	ids, total, err := srv.searcher.Search(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search products")
	}

	products, err := srv.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load search hits")
	}

	active := make([]*entity.Product, 0, len(products))
	for _, product := range products {
		if product.IsActive {
			active = append(active, product)
		}
	}

	return &usecase.ProductListOutput{Products: active, Total: total}, nil
}

func (srv *catalogService) CreateProduct(ctx context.Context, input usecase.ProductInput) (*entity.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &entity.Product{
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price.Round(2),
		IsActive:    input.IsActive,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.CategoryRepo().FindByID(ctx, input.CategoryID); err != nil {
			return err
		}

		return repoFactory.ProductRepo().Create(ctx, product)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.Any("productID", product.ID), slog.String("name", product.Name))
	srv.reindex(ctx, product)

	return product, nil
}

func (srv *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input usecase.ProductInput) (*entity.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	var updated *entity.Product
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()

		product, err := productRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if product.CategoryID != input.CategoryID {
			if _, err := repoFactory.CategoryRepo().FindByID(ctx, input.CategoryID); err != nil {
				return err
			}
		}

		product.CategoryID = input.CategoryID
		product.Name = strings.TrimSpace(input.Name)
		product.Description = input.Description
		product.Price = input.Price.Round(2)
		product.IsActive = input.IsActive
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		updated = product

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}

	srv.reindex(ctx, updated)

	return updated, nil
}

// DeleteProduct cascades in the application: cart rows, favorites and tag links go away,
// order line items keep their snapshot with no product reference.
func (srv *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var imageKey *string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()

		product, err := productRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		imageKey = product.ImageKey

		if err := repoFactory.CartRepo().DeleteByProduct(ctx, id); err != nil {
			return err
		}
		if err := repoFactory.FavoriteRepo().DeleteByProduct(ctx, id); err != nil {
			return err
		}
		if err := repoFactory.OrderRepo().DetachProduct(ctx, id); err != nil {
			return err
		}
		if err := productRepo.SetTags(ctx, id, nil); err != nil {
			return err
		}

		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}

	srv.log(ctx).Info("Product deleted", slog.Any("productID", id))

	if err := srv.searcher.Remove(ctx, id); err != nil {
		srv.log(ctx).Warn("Failed to remove product from search index", slog.Any("productID", id), slog.Any("error", err))
	}
	if imageKey != nil {
		srv.deleteImage(ctx, *imageKey)
	}

	return nil
}

func (srv *catalogService) SetProductTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) (*entity.Product, error) {
	var updated *entity.Product
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()

		if _, err := productRepo.FindByID(ctx, id); err != nil {
			return err
		}
		if _, err := repoFactory.TagRepo().FindByIDs(ctx, tagIDs); err != nil {
			return err
		}
		if err := productRepo.SetTags(ctx, id, tagIDs); err != nil {
			return err
		}

		product, err := productRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = product

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to set product tags")
	}

	srv.reindex(ctx, updated)

	return updated, nil
}

// UploadProductImage stores the photo and replaces the previous one.
func (srv *catalogService) UploadProductImage(ctx context.Context, id uuid.UUID, upload usecase.ImageUpload) (*entity.Product, error) {
	if err := validateImage(upload); err != nil {
		return nil, err
	}

	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}

	key, err := imageKey("products", id)
	if err != nil {
		return nil, err
	}
	if err := srv.images.Put(ctx, key, upload.Data, upload.ContentType); err != nil {
		return nil, errors.Wrap(err, "failed to store product image")
	}

	previous := product.ImageKey
	product.ImageKey = &key
	if err := srv.productRepo.Update(ctx, product); err != nil {
		srv.deleteImage(ctx, key)

		return nil, errors.Wrap(err, "failed to save product image key")
	}

	if previous != nil {
		srv.deleteImage(ctx, *previous)
	}

	return product, nil
}

func (srv *catalogService) ProductQRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	product, err := srv.GetProduct(ctx, id, false)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrCodes.GenerateProductQR(product.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate product QR code")
	}

	return png, nil
}

func (srv *catalogService) GetImage(ctx context.Context, key string) ([]byte, error) {
	data, err := srv.images.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get image")
	}

	return data, nil
}

// --- Tags ---

func (srv *catalogService) ListTags(ctx context.Context) ([]*entity.Tag, error) {
	tags, err := srv.tagRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}

	return tags, nil
}

func (srv *catalogService) CreateTag(ctx context.Context, name string) (*entity.Tag, error) {
	tag := &entity.Tag{Name: strings.TrimSpace(name)}
	if tag.Name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("tag name is required")
	}

	if err := srv.tagRepo.Create(ctx, tag); err != nil {
		return nil, errors.Wrap(err, "failed to create tag")
	}

	return tag, nil
}

func (srv *catalogService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.TagRepo().Delete(ctx, id)
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete tag")
	}

	return nil
}

// reindex pushes the product to the search index. Index failures never fail the write.
func (srv *catalogService) reindex(ctx context.Context, product *entity.Product) {
	if product == nil {
		return
	}

	if err := srv.searcher.Index(ctx, product); err != nil {
		srv.log(ctx).Warn("Failed to index product", slog.Any("productID", product.ID), slog.Any("error", err))
	}
}

func (srv *catalogService) deleteImage(ctx context.Context, key string) {
	if err := srv.images.Delete(ctx, key); err != nil {
		srv.log(ctx).Warn("Failed to delete image", slog.String("key", key), slog.Any("error", err))
	}
}

func validateProductInput(input usecase.ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("product name is required")
	}
	if input.Price.IsNegative() {
		return domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}
	if input.CategoryID == uuid.Nil {
		return domainerrors.ErrValidationFailed.WrapMessage("category is required")
	}

	return nil
}
