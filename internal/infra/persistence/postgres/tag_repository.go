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

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository is the constructor for tagRepository.
func NewTagRepository(db *gorm.DB) repository.TagRepository {
	return &tagRepository{db: db}
}

func (repo *tagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	tagM := &model.TagModel{Name: tag.Name}
	if err := repo.db.WithContext(ctx).Create(tagM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrTagAlreadyExists, "failed to create tag")
	}

	tag.ID = tagM.ID
	tag.CreatedAt = tagM.CreatedAt
	tag.UpdatedAt = tagM.UpdatedAt

	return nil
}

func (repo *tagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Tag, error) {
	if len(ids) == 0 {
		return []*entity.Tag{}, nil
	}

	var tagModels []*model.TagModel
	if err := repo.db.WithContext(ctx).Where("id IN ?", ids).Find(&tagModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find tags")
	}

	byID := make(map[uuid.UUID]*model.TagModel, len(tagModels))
	for _, tagM := range tagModels {
		byID[tagM.ID] = tagM
	}

	tags := make([]*entity.Tag, 0, len(ids))
	for _, id := range ids {
		tagM, ok := byID[id]
		if !ok {
			return nil, domainerrors.ErrTagNotFound.WrapMessage("tag " + id.String())
		}
		tags = append(tags, toTagDomain(tagM))
	}

	return tags, nil
}

func (repo *tagRepository) List(ctx context.Context) ([]*entity.Tag, error) {
	var tagModels []*model.TagModel
	if err := repo.db.WithContext(ctx).Order("name ASC").Find(&tagModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}

	return mapSlice(tagModels, toTagDomain), nil
}

// Delete removes the tag and its product and newsletter links.
func (repo *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := repo.db.WithContext(ctx)
	if err := db.Where("tag_id = ?", id).Delete(&model.ProductTagModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to unlink tag from products")
	}
	if err := db.Where("tag_id = ?", id).Delete(&model.NewsletterTagModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to unlink tag from newsletters")
	}

	result := db.Where("id = ?", id).Delete(&model.TagModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete tag")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTagNotFound
	}

	return nil
}

func toTagDomain(data *model.TagModel) *entity.Tag {
	return &entity.Tag{
		ID:        data.ID,
		Name:      data.Name,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// loadTags returns the tags linked through a join table, keyed by owner id.
func loadTags(ctx context.Context, db *gorm.DB, joinTable, ownerColumn string, ownerIDs []uuid.UUID) (map[uuid.UUID][]*entity.Tag, error) {
	result := make(map[uuid.UUID][]*entity.Tag, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	type row struct {
		OwnerID   uuid.UUID
		ID        uuid.UUID
		Name      string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	var rows []row
	err := db.WithContext(ctx).
		Table(joinTable+" AS j").
		Select("j."+ownerColumn+" AS owner_id, t.id, t.name, t.created_at, t.updated_at").
		Joins("JOIN tags t ON t.id = j.tag_id").
		Where("j."+ownerColumn+" IN ?", ownerIDs).
		Order("t.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tags from %s", joinTable)
	}

	for _, r := range rows {
		result[r.OwnerID] = append(result[r.OwnerID], &entity.Tag{
			ID:        r.ID,
			Name:      r.Name,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}

	return result, nil
}
