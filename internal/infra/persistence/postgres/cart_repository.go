package postgres

import (
	"context"
	"time"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/errors"
	"fireworks/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// AddOrIncrement upserts on (user_id, product_id), adding to the stored amount.
func (repo *cartRepository) AddOrIncrement(ctx context.Context, userID, productID uuid.UUID, amount int) (*entity.CartItem, error) {
	itemM := &model.CartItemModel{UserID: userID, ProductID: productID, Amount: amount}
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     gorm.Expr("cart_items.amount + excluded.amount"),
			"updated_at": time.Now(),
		}),
	}).Create(itemM).Error
	if err != nil {
		return nil, translateWriteError(err, domainerrors.ErrConflict, "failed to add cart item")
	}

	return repo.find(ctx, userID, productID)
}

func (repo *cartRepository) SetAmount(ctx context.Context, userID, productID uuid.UUID, amount int) (*entity.CartItem, error) {
	result := repo.db.WithContext(ctx).Model(&model.CartItemModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"amount": amount, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update cart item")
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrCartItemNotFound
	}

	return repo.find(ctx, userID, productID)
}

func (repo *cartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItemModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to remove cart item")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCartItemNotFound
	}

	return nil
}

func (repo *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItemModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear cart")
	}

	return nil
}

func (repo *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CartItem, error) {
	var itemModels []*model.CartItemModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&itemModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cart items")
	}

	productIDs := make([]uuid.UUID, 0, len(itemModels))
	for _, itemM := range itemModels {
		productIDs = append(productIDs, itemM.ProductID)
	}

	products, err := NewProductRepository(repo.db).FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]*entity.CartItem, 0, len(itemModels))
	for _, itemM := range itemModels {
		item := toCartItemDomain(itemM)
		item.Product = byID[itemM.ProductID]
		items = append(items, item)
	}

	return items, nil
}

func (repo *cartRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.CartItemModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete cart items of product")
	}

	return nil
}

func (repo *cartRepository) find(ctx context.Context, userID, productID uuid.UUID) (*entity.CartItem, error) {
	var itemM model.CartItemModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&itemM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrCartItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart item")
	}

	return toCartItemDomain(&itemM), nil
}

func toCartItemDomain(data *model.CartItemModel) *entity.CartItem {
	return &entity.CartItem{
		ID:        data.ID,
		UserID:    data.UserID,
		ProductID: data.ProductID,
		Amount:    data.Amount,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
