package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

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

const (
	defaultPreviewSample = 10
	maxPreviewSample     = 50
)

// newsletterService implements the NewsletterUsecase interface.
type newsletterService struct {
	txManager      repository.TransactionManager
	newsletterRepo repository.NewsletterRepository
	images         service.ImageStorage
	now            func() time.Time
	logger         *slog.Logger
}

// NewsletterServiceParams holds dependencies for NewsletterService, injected by Fx.
type NewsletterServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	NewsletterRepo repository.NewsletterRepository
	Images         service.ImageStorage
	Logger         *slog.Logger
}

// NewNewsletterService is the constructor for newsletterService.
func NewNewsletterService(params NewsletterServiceParams) usecase.NewsletterUsecase {
	return &newsletterService{
		txManager:      params.TxManager,
		newsletterRepo: params.NewsletterRepo,
		images:         params.Images,
		now:            time.Now,
		logger:         params.Logger,
	}
}

func (srv *newsletterService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *newsletterService) Create(ctx context.Context, input usecase.NewsletterInput) (*entity.Newsletter, error) {
	if err := validateNewsletterInput(input); err != nil {
		return nil, err
	}

	newsletter := &entity.Newsletter{}
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tags, err := repoFactory.TagRepo().FindByIDs(ctx, input.TagIDs)
		if err != nil {
			return err
		}

		applyNewsletterInput(newsletter, input, tags)

		return repoFactory.NewsletterRepo().Create(ctx, newsletter)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create newsletter")
	}

	srv.log(ctx).Info("Newsletter scheduled",
		slog.Any("newsletterID", newsletter.ID),
		slog.Time("sendAt", newsletter.SendAt),
	)

	return newsletter, nil
}

// Update rewrites content and criteria of a pending newsletter.
func (srv *newsletterService) Update(ctx context.Context, id uuid.UUID, input usecase.NewsletterInput) (*entity.Newsletter, error) {
	if err := validateNewsletterInput(input); err != nil {
		return nil, err
	}

	var updated *entity.Newsletter
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		newsletterRepo := repoFactory.NewsletterRepo()

		newsletter, err := newsletterRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if newsletter.IsSent || newsletter.IsCanceled {
			return domainerrors.ErrNewsletterLocked
		}

		tags, err := repoFactory.TagRepo().FindByIDs(ctx, input.TagIDs)
		if err != nil {
			return err
		}

		applyNewsletterInput(newsletter, input, tags)
		if err := newsletterRepo.Update(ctx, newsletter); err != nil {
			return err
		}
		updated = newsletter

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update newsletter")
	}

	return updated, nil
}

func (srv *newsletterService) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := srv.newsletterRepo.Cancel(ctx, id); err != nil {
		return errors.Wrap(err, "failed to cancel newsletter")
	}

	srv.log(ctx).Info("Newsletter canceled", slog.Any("newsletterID", id))

	return nil
}

func (srv *newsletterService) Get(ctx context.Context, id uuid.UUID) (*entity.Newsletter, error) {
	newsletter, err := srv.newsletterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get newsletter")
	}

	return newsletter, nil
}

func (srv *newsletterService) List(ctx context.Context, page usecase.Page) (*usecase.NewsletterListOutput, error) {
	newsletters, total, err := srv.newsletterRepo.List(ctx, repository.ListOptions{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list newsletters")
	}

	return &usecase.NewsletterListOutput{Newsletters: newsletters, Total: total}, nil
}

func (srv *newsletterService) UploadImage(ctx context.Context, id uuid.UUID, upload usecase.ImageUpload) (*entity.Newsletter, error) {
	if err := validateImage(upload); err != nil {
		return nil, err
	}

	newsletter, err := srv.newsletterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find newsletter")
	}
	if newsletter.IsSent || newsletter.IsCanceled {
		return nil, domainerrors.ErrNewsletterLocked
	}

	key, err := imageKey("newsletters", id)
	if err != nil {
		return nil, err
	}
	if err := srv.images.Put(ctx, key, upload.Data, upload.ContentType); err != nil {
		return nil, errors.Wrap(err, "failed to store newsletter image")
	}

	previous := newsletter.ImageKey
	newsletter.ImageKey = &key
	if err := srv.newsletterRepo.Update(ctx, newsletter); err != nil {
		return nil, errors.Wrap(err, "failed to save newsletter image key")
	}

	if previous != nil {
		if err := srv.images.Delete(ctx, *previous); err != nil {
			srv.log(ctx).Warn("Failed to delete replaced newsletter image", slog.String("key", *previous), slog.Any("error", err))
		}
	}

	return newsletter, nil
}

// Preview counts the audience at this moment and returns the first users of it.
func (srv *newsletterService) Preview(ctx context.Context, id uuid.UUID, sampleSize int) (*usecase.AudiencePreview, error) {
	if sampleSize <= 0 {
		sampleSize = defaultPreviewSample
	}
	sampleSize = min(sampleSize, maxPreviewSample)

	newsletter, err := srv.newsletterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find newsletter")
	}

	now := srv.now().UTC()
	criteria := newsletter.Criteria()

	count, err := srv.newsletterRepo.CountAudience(ctx, criteria, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count audience")
	}

	users, err := srv.newsletterRepo.FindAudience(ctx, criteria, now, sampleSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find audience")
	}

	return &usecase.AudiencePreview{Count: count, Sample: users}, nil
}

func validateNewsletterInput(input usecase.NewsletterInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("newsletter title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("newsletter content is required")
	}
	if input.NumberOfOrders < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("number of orders must not be negative")
	}
	if input.AccountAge != nil && !input.AccountAge.IsValid() {
		return domainerrors.ErrValidationFailed.WrapMessage("unknown account age bucket")
	}
	if input.SendAt.IsZero() {
		return domainerrors.ErrValidationFailed.WrapMessage("send time is required")
	}

	return nil
}

func applyNewsletterInput(newsletter *entity.Newsletter, input usecase.NewsletterInput, tags []*entity.Tag) {
	newsletter.Title = strings.TrimSpace(input.Title)
	newsletter.Content = input.Content
	newsletter.AgeVerified = input.AgeVerified
	newsletter.AccountAge = input.AccountAge
	newsletter.NumberOfOrders = input.NumberOfOrders
	newsletter.UsersRelatedToTag = input.UsersRelatedToTag
	newsletter.Tags = tags
	newsletter.SendAt = input.SendAt.UTC()
}
