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

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository is the constructor for addressRepository.
func NewAddressRepository(db *gorm.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

func (repo *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	addressM := fromAddressDomain(address)
	if err := repo.db.WithContext(ctx).Create(addressM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrAddressAlreadyExists, "failed to create address")
	}

	address.ID = addressM.ID
	address.CreatedAt = addressM.CreatedAt
	address.UpdatedAt = addressM.UpdatedAt

	return nil
}

func (repo *addressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.Address, error) {
	var addressM model.AddressModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&addressM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAddressNotFound
		}

		return nil, errors.Wrap(err, "failed to find address")
	}

	return toAddressDomain(&addressM), nil
}

func (repo *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Address, error) {
	var addressModels []*model.AddressModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&addressModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list addresses")
	}

	return mapSlice(addressModels, toAddressDomain), nil
}

func (repo *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	addressM := fromAddressDomain(address)
	result := repo.db.WithContext(ctx).Model(&model.AddressModel{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Select("label", "full_address", "comment", "updated_at").
		Updates(addressM)
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrAddressAlreadyExists, "failed to update address")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAddressNotFound
	}

	address.UpdatedAt = addressM.UpdatedAt

	return nil
}

// Delete removes the address and detaches it from the owner's orders.
func (repo *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	db := repo.db.WithContext(ctx)
	err := db.Model(&model.OrderModel{}).
		Where("address_id = ? AND user_id = ?", id, userID).
		Update("address_id", nil).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to detach address from orders")
	}

	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.AddressModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete address")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAddressNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toAddressDomain(data *model.AddressModel) *entity.Address {
	return &entity.Address{
		ID:          data.ID,
		UserID:      data.UserID,
		Label:       data.Label,
		FullAddress: data.FullAddress,
		Comment:     data.Comment,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromAddressDomain(data *entity.Address) *model.AddressModel {
	return &model.AddressModel{
		ID:          data.ID,
		UserID:      data.UserID,
		Label:       data.Label,
		FullAddress: data.FullAddress,
		Comment:     data.Comment,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
