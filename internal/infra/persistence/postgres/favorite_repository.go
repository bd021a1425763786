package postgres

import (
	"context"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/errors"
	"fireworks/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository is the constructor for favoriteRepository.
func NewFavoriteRepository(db *gorm.DB) repository.FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (repo *favoriteRepository) Create(ctx context.Context, favorite *entity.Favorite) error {
	favoriteM := &model.FavoriteModel{UserID: favorite.UserID, ProductID: favorite.ProductID}
	if err := repo.db.WithContext(ctx).Create(favoriteM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrFavoriteAlreadyExists, "failed to add favorite")
	}

	favorite.ID = favoriteM.ID
	favorite.CreatedAt = favoriteM.CreatedAt
	favorite.UpdatedAt = favoriteM.UpdatedAt

	return nil
}

func (repo *favoriteRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.FavoriteModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete favorite")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFavoriteNotFound
	}

	return nil
}

func (repo *favoriteRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&model.FavoriteModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check favorite")
	}

	return count > 0, nil
}

func (repo *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Favorite, error) {
	var favoriteModels []*model.FavoriteModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favoriteModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list favorites")
	}

	productIDs := make([]uuid.UUID, 0, len(favoriteModels))
	for _, favoriteM := range favoriteModels {
		productIDs = append(productIDs, favoriteM.ProductID)
	}

	products, err := NewProductRepository(repo.db).FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	favorites := make([]*entity.Favorite, 0, len(favoriteModels))
	for _, favoriteM := range favoriteModels {
		favorites = append(favorites, &entity.Favorite{
			ID:        favoriteM.ID,
			UserID:    favoriteM.UserID,
			ProductID: favoriteM.ProductID,
			Product:   byID[favoriteM.ProductID],
			CreatedAt: favoriteM.CreatedAt,
			UpdatedAt: favoriteM.UpdatedAt,
		})
	}

	return favorites, nil
}

func (repo *favoriteRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.FavoriteModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete favorites of product")
	}

	return nil
}
