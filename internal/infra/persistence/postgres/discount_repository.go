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
)

type discountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository is the constructor for discountRepository.
func NewDiscountRepository(db *gorm.DB) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (repo *discountRepository) Create(ctx context.Context, discount *entity.Discount) error {
	discountM := fromDiscountDomain(discount)
	if err := repo.db.WithContext(ctx).Create(discountM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to create discount")
	}

	discount.ID = discountM.ID
	discount.CreatedAt = discountM.CreatedAt
	discount.UpdatedAt = discountM.UpdatedAt

	return nil
}

func (repo *discountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Discount, error) {
	var discountM model.DiscountModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&discountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrDiscountNotFound
		}

		return nil, errors.Wrap(err, "failed to find discount")
	}

	return toDiscountDomain(&discountM), nil
}

func (repo *discountRepository) List(ctx context.Context, runningAt *time.Time) ([]*entity.Discount, error) {
	query := repo.db.WithContext(ctx).Model(&model.DiscountModel{})
	if runningAt != nil {
		query = query.
			Where("is_active = ?", true).
			Where("starts_at <= ?", *runningAt).
			Where("(ends_at IS NULL OR ends_at > ?)", *runningAt)
	}

	var discountModels []*model.DiscountModel
	if err := query.Order("starts_at DESC").Find(&discountModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list discounts")
	}

	return mapSlice(discountModels, toDiscountDomain), nil
}

func (repo *discountRepository) Update(ctx context.Context, discount *entity.Discount) error {
	discountM := fromDiscountDomain(discount)
	result := repo.db.WithContext(ctx).Model(&model.DiscountModel{}).
		Where("id = ?", discount.ID).
		Select("title", "description", "image_key", "starts_at", "ends_at", "is_active", "updated_at").
		Updates(discountM)
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update discount")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrDiscountNotFound
	}

	discount.UpdatedAt = discountM.UpdatedAt

	return nil
}

func (repo *discountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.DiscountModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete discount")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrDiscountNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toDiscountDomain(data *model.DiscountModel) *entity.Discount {
	return &entity.Discount{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		ImageKey:    data.ImageKey,
		StartsAt:    data.StartsAt,
		EndsAt:      data.EndsAt,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromDiscountDomain(data *entity.Discount) *model.DiscountModel {
	return &model.DiscountModel{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		ImageKey:    data.ImageKey,
		StartsAt:    data.StartsAt,
		EndsAt:      data.EndsAt,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
