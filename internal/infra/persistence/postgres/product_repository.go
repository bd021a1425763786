package postgres

import (
	"context"
	"strings"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/errors"
	"fireworks/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)
	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product")
	}

	products, err := repo.withTags(ctx, []*model.ProductModel{&productM})
	if err != nil {
		return nil, err
	}

	return products[0], nil
}

func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}

	var productModels []*model.ProductModel
	if err := repo.db.WithContext(ctx).Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products")
	}

	products, err := repo.withTags(ctx, productModels)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	ordered := make([]*entity.Product, 0, len(products))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			ordered = append(ordered, product)
		}
	}

	return ordered, nil
}

func (repo *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.ProductModel{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count products")
	}

	var productModels []*model.ProductModel
	if err := paginate(query, filter.ListOptions).Order("name ASC, id ASC").Find(&productModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list products")
	}

	products, err := repo.withTags(ctx, productModels)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)
	result := repo.db.WithContext(ctx).Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Select("category_id", "name", "description", "price", "image_key", "is_active", "updated_at").
		Updates(productM)
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProductNotFound
	}

	product.UpdatedAt = productM.UpdatedAt

	return nil
}

func (repo *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProductModel{})
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProductNotFound
	}

	return nil
}

// SetTags replaces the tag links of a product.
func (repo *productRepository) SetTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	db := repo.db.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&model.ProductTagModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear product tags")
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]*model.ProductTagModel, 0, len(tagIDs))
	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		links = append(links, &model.ProductTagModel{ProductID: productID, TagID: tagID})
	}

	if err := db.Create(&links).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to link product tags")
	}

	return nil
}

func (repo *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&model.ProductModel{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count category products")
	}

	return count, nil
}

func (repo *productRepository) withTags(ctx context.Context, productModels []*model.ProductModel) ([]*entity.Product, error) {
	ids := make([]uuid.UUID, 0, len(productModels))
	for _, productM := range productModels {
		ids = append(ids, productM.ID)
	}

	tags, err := loadTags(ctx, repo.db, "product_tags", "product_id", ids)
	if err != nil {
		return nil, err
	}

	products := make([]*entity.Product, 0, len(productModels))
	for _, productM := range productModels {
		product := toProductDomain(productM)
		if productTags, ok := tags[productM.ID]; ok {
			product.Tags = productTags
		}
		products = append(products, product)
	}

	return products, nil
}

// --- Mapper Functions ---

func toProductDomain(data *model.ProductModel) *entity.Product {
	return &entity.Product{
		ID:          data.ID,
		CategoryID:  data.CategoryID,
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		ImageKey:    data.ImageKey,
		IsActive:    data.IsActive,
		Tags:        []*entity.Tag{},
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:          data.ID,
		CategoryID:  data.CategoryID,
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		ImageKey:    data.ImageKey,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
