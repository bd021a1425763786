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

type newsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository is the constructor for newsletterRepository.
func NewNewsletterRepository(db *gorm.DB) repository.NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (repo *newsletterRepository) Create(ctx context.Context, newsletter *entity.Newsletter) error {
	db := repo.db.WithContext(ctx)

	newsletterM := fromNewsletterDomain(newsletter)
	if err := db.Create(newsletterM).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to create newsletter")
	}

	newsletter.ID = newsletterM.ID
	newsletter.CreatedAt = newsletterM.CreatedAt
	newsletter.UpdatedAt = newsletterM.UpdatedAt

	return repo.replaceTags(ctx, newsletter.ID, newsletter.TagIDs())
}

func (repo *newsletterRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Newsletter, error) {
	var newsletterM model.NewsletterModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&newsletterM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNewsletterNotFound
		}

		return nil, errors.Wrap(err, "failed to find newsletter")
	}

	newsletters, err := repo.withTags(ctx, []*model.NewsletterModel{&newsletterM})
	if err != nil {
		return nil, err
	}

	return newsletters[0], nil
}

func (repo *newsletterRepository) List(ctx context.Context, opts repository.ListOptions) ([]*entity.Newsletter, int64, error) {
	var total int64
	if err := repo.db.WithContext(ctx).Model(&model.NewsletterModel{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count newsletters")
	}

	var newsletterModels []*model.NewsletterModel
	if err := paginate(repo.db.WithContext(ctx), opts).Order("send_at DESC, id DESC").Find(&newsletterModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list newsletters")
	}

	newsletters, err := repo.withTags(ctx, newsletterModels)
	if err != nil {
		return nil, 0, err
	}

	return newsletters, total, nil
}

// Update rewrites content, schedule and criteria of a newsletter that was not sent yet.
func (repo *newsletterRepository) Update(ctx context.Context, newsletter *entity.Newsletter) error {
	newsletterM := fromNewsletterDomain(newsletter)
	result := repo.db.WithContext(ctx).Model(&model.NewsletterModel{}).
		Where("id = ? AND is_sent = ? AND claimed_at IS NULL", newsletter.ID, false).
		Select("title", "content", "image_key", "age_verified", "account_age", "number_of_orders",
			"users_related_to_tag", "send_at", "updated_at").
		Updates(newsletterM)
	if result.Error != nil {
		return translateWriteError(result.Error, domainerrors.ErrConflict, "failed to update newsletter")
	}
	if result.RowsAffected == 0 {
		return repo.lockedOrMissing(ctx, newsletter.ID)
	}

	newsletter.UpdatedAt = newsletterM.UpdatedAt

	return repo.replaceTags(ctx, newsletter.ID, newsletter.TagIDs())
}

func (repo *newsletterRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Model(&model.NewsletterModel{}).
		Where("id = ? AND is_sent = ?", id, false).
		Updates(map[string]any{"is_canceled": true, "updated_at": time.Now()})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to cancel newsletter")
	}
	if result.RowsAffected == 0 {
		return repo.lockedOrMissing(ctx, id)
	}

	return nil
}

func (repo *newsletterRepository) FindDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*entity.Newsletter, error) {
	var newsletterModels []*model.NewsletterModel
	err := pendingScope(repo.db.WithContext(ctx), staleBefore).
		Where("send_at <= ?", now).
		Order("send_at ASC, id ASC").
		Limit(limit).
		Find(&newsletterModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find due newsletters")
	}

	return repo.withTags(ctx, newsletterModels)
}

// Claim is a compare-and-set on claimed_at. Exactly one concurrent caller
// observes RowsAffected == 1.
func (repo *newsletterRepository) Claim(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error) {
	result := pendingScope(repo.db.WithContext(ctx).Model(&model.NewsletterModel{}), staleBefore).
		Where("id = ?", id).
		Updates(map[string]any{"claimed_at": now, "updated_at": now})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to claim newsletter")
	}

	return result.RowsAffected == 1, nil
}

func (repo *newsletterRepository) ReleaseClaim(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).Model(&model.NewsletterModel{}).
		Where("id = ? AND is_sent = ?", id, false).
		Updates(map[string]any{"claimed_at": nil, "updated_at": time.Now()}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to release newsletter claim")
	}

	return nil
}

func (repo *newsletterRepository) MarkSent(ctx context.Context, id uuid.UUID, sentCount, failedCount int, sentAt time.Time) error {
	result := repo.db.WithContext(ctx).Model(&model.NewsletterModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_sent":      true,
			"sent_at":      sentAt,
			"sent_count":   sentCount,
			"failed_count": failedCount,
			"updated_at":   sentAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark newsletter sent")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNewsletterNotFound
	}

	return nil
}

func (repo *newsletterRepository) FindAudience(ctx context.Context, criteria entity.AudienceCriteria, now time.Time, limit int) ([]*entity.User, error) {
	query := audienceQuery(repo.db.WithContext(ctx), criteria, now).
		Order("users.created_at ASC, users.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var userModels []*model.UserModel
	err := query.Find(&userModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to select newsletter audience")
	}

	return mapSlice(userModels, toUserDomain), nil
}

func (repo *newsletterRepository) CountAudience(ctx context.Context, criteria entity.AudienceCriteria, now time.Time) (int64, error) {
	var count int64
	if err := audienceQuery(repo.db.WithContext(ctx), criteria, now).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count newsletter audience")
	}

	return count, nil
}

func (repo *newsletterRepository) replaceTags(ctx context.Context, newsletterID uuid.UUID, tagIDs []uuid.UUID) error {
	db := repo.db.WithContext(ctx)
	if err := db.Where("newsletter_id = ?", newsletterID).Delete(&model.NewsletterTagModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear newsletter tags")
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]*model.NewsletterTagModel, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, &model.NewsletterTagModel{NewsletterID: newsletterID, TagID: tagID})
	}
	if err := db.Create(&links).Error; err != nil {
		return translateWriteError(err, domainerrors.ErrConflict, "failed to link newsletter tags")
	}

	return nil
}

func (repo *newsletterRepository) lockedOrMissing(ctx context.Context, id uuid.UUID) error {
	if _, err := repo.FindByID(ctx, id); err != nil {
		return err
	}

	return domainerrors.ErrNewsletterLocked
}

func (repo *newsletterRepository) withTags(ctx context.Context, newsletterModels []*model.NewsletterModel) ([]*entity.Newsletter, error) {
	ids := make([]uuid.UUID, 0, len(newsletterModels))
	for _, newsletterM := range newsletterModels {
		ids = append(ids, newsletterM.ID)
	}

	tags, err := loadTags(ctx, repo.db, "newsletter_tags", "newsletter_id", ids)
	if err != nil {
		return nil, err
	}

	newsletters := make([]*entity.Newsletter, 0, len(newsletterModels))
	for _, newsletterM := range newsletterModels {
		newsletter := toNewsletterDomain(newsletterM)
		if newsletterTags, ok := tags[newsletterM.ID]; ok {
			newsletter.Tags = newsletterTags
		}
		newsletters = append(newsletters, newsletter)
	}

	return newsletters, nil
}

// pendingScope matches newsletters that still wait for dispatch and carry no fresh claim.
func pendingScope(db *gorm.DB, staleBefore time.Time) *gorm.DB {
	return db.
		Where("is_sent = ? AND is_canceled = ?", false, false).
		Where("(claimed_at IS NULL OR claimed_at < ?)", staleBefore)
}

// --- Mapper Functions ---

func toNewsletterDomain(data *model.NewsletterModel) *entity.Newsletter {
	var accountAge *entity.AccountAge
	if data.AccountAge != nil {
		age := entity.AccountAge(*data.AccountAge)
		accountAge = &age
	}

	return &entity.Newsletter{
		ID:                data.ID,
		Title:             data.Title,
		Content:           data.Content,
		ImageKey:          data.ImageKey,
		AgeVerified:       data.AgeVerified,
		AccountAge:        accountAge,
		NumberOfOrders:    data.NumberOfOrders,
		UsersRelatedToTag: data.UsersRelatedToTag,
		Tags:              []*entity.Tag{},
		SendAt:            data.SendAt,
		IsSent:            data.IsSent,
		IsCanceled:        data.IsCanceled,
		ClaimedAt:         data.ClaimedAt,
		SentAt:            data.SentAt,
		SentCount:         data.SentCount,
		FailedCount:       data.FailedCount,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func fromNewsletterDomain(data *entity.Newsletter) *model.NewsletterModel {
	var accountAge *string
	if data.AccountAge != nil {
		age := string(*data.AccountAge)
		accountAge = &age
	}

	return &model.NewsletterModel{
		ID:                data.ID,
		Title:             data.Title,
		Content:           data.Content,
		ImageKey:          data.ImageKey,
		AgeVerified:       data.AgeVerified,
		AccountAge:        accountAge,
		NumberOfOrders:    data.NumberOfOrders,
		UsersRelatedToTag: data.UsersRelatedToTag,
		SendAt:            data.SendAt,
		IsSent:            data.IsSent,
		IsCanceled:        data.IsCanceled,
		ClaimedAt:         data.ClaimedAt,
		SentAt:            data.SentAt,
		SentCount:         data.SentCount,
		FailedCount:       data.FailedCount,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}
