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

// userRepository implements the domain.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user and copies back generated values.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrUserAlreadyExists, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", email)
}

func (repo *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	return repo.findOne(ctx, "telegram_id = ?", telegramID)
}

func (repo *userRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where(query, args...).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// Update saves every mutable column of the user.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Select("telegram_id", "username", "first_name", "last_name", "phone", "email",
			"password_hash", "is_verified", "age_verified", "is_admin", "is_superuser", "updated_at").
		Updates(userM)
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrUserAlreadyExists, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

func (repo *userRepository) List(ctx context.Context, opts repository.ListOptions) ([]*entity.User, int64, error) {
	var total int64
	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count users")
	}

	var userModels []*model.UserModel
	if err := paginate(repo.db.WithContext(ctx), opts).Order("created_at DESC").Find(&userModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list users")
	}

	return mapSlice(userModels, toUserDomain), total, nil
}

// --- Mapper Functions ---

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		TelegramID:   data.TelegramID,
		Username:     data.Username,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Phone:        data.Phone,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsVerified:   data.IsVerified,
		AgeVerified:  data.AgeVerified,
		IsAdmin:      data.IsAdmin,
		IsSuperuser:  data.IsSuperuser,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		TelegramID:   data.TelegramID,
		Username:     data.Username,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Phone:        data.Phone,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsVerified:   data.IsVerified,
		AgeVerified:  data.AgeVerified,
		IsAdmin:      data.IsAdmin,
		IsSuperuser:  data.IsSuperuser,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
