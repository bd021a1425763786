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

// discountService implements the DiscountUsecase interface.
type discountService struct {
	discountRepo repository.DiscountRepository
	images       service.ImageStorage
	now          func() time.Time
	logger       *slog.Logger
}

// DiscountServiceParams holds dependencies for DiscountService, injected by Fx.
type DiscountServiceParams struct {
	fx.In

	DiscountRepo repository.DiscountRepository
	Images       service.ImageStorage
	Logger       *slog.Logger
}

// NewDiscountService is the constructor for discountService.
func NewDiscountService(params DiscountServiceParams) usecase.DiscountUsecase {
	return &discountService{
		discountRepo: params.DiscountRepo,
		images:       params.Images,
		now:          time.Now,
		logger:       params.Logger,
	}
}

func (srv *discountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *discountService) ListRunning(ctx context.Context) ([]*entity.Discount, error) {
	now := srv.now().UTC()

	discounts, err := srv.discountRepo.List(ctx, &now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list running discounts")
	}

	return discounts, nil
}

func (srv *discountService) ListAll(ctx context.Context) ([]*entity.Discount, error) {
	discounts, err := srv.discountRepo.List(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list discounts")
	}

	return discounts, nil
}

func (srv *discountService) GetDiscount(ctx context.Context, id uuid.UUID) (*entity.Discount, error) {
	discount, err := srv.discountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get discount")
	}

	return discount, nil
}

func (srv *discountService) CreateDiscount(ctx context.Context, input usecase.DiscountInput) (*entity.Discount, error) {
	if err := validateDiscountInput(input); err != nil {
		return nil, err
	}

	discount := &entity.Discount{}
	applyDiscountInput(discount, input)

	if err := srv.discountRepo.Create(ctx, discount); err != nil {
		return nil, errors.Wrap(err, "failed to create discount")
	}

	srv.log(ctx).Info("Discount created", slog.Any("discountID", discount.ID), slog.String("title", discount.Title))

	return discount, nil
}

func (srv *discountService) UpdateDiscount(ctx context.Context, id uuid.UUID, input usecase.DiscountInput) (*entity.Discount, error) {
	if err := validateDiscountInput(input); err != nil {
		return nil, err
	}

	discount, err := srv.discountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find discount")
	}

	applyDiscountInput(discount, input)
	if err := srv.discountRepo.Update(ctx, discount); err != nil {
		return nil, errors.Wrap(err, "failed to update discount")
	}

	return discount, nil
}

func (srv *discountService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	discount, err := srv.discountRepo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to find discount")
	}

	if err := srv.discountRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete discount")
	}

	if discount.ImageKey != nil {
		if err := srv.images.Delete(ctx, *discount.ImageKey); err != nil {
			srv.log(ctx).Warn("Failed to delete discount image", slog.Any("discountID", id), slog.Any("error", err))
		}
	}

	return nil
}

func (srv *discountService) UploadDiscountImage(ctx context.Context, id uuid.UUID, upload usecase.ImageUpload) (*entity.Discount, error) {
	if err := validateImage(upload); err != nil {
		return nil, err
	}

	discount, err := srv.discountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find discount")
	}

	key, err := imageKey("discounts", id)
	if err != nil {
		return nil, err
	}
	if err := srv.images.Put(ctx, key, upload.Data, upload.ContentType); err != nil {
		return nil, errors.Wrap(err, "failed to store discount image")
	}

	previous := discount.ImageKey
	discount.ImageKey = &key
	if err := srv.discountRepo.Update(ctx, discount); err != nil {
		return nil, errors.Wrap(err, "failed to save discount image key")
	}

	if previous != nil {
		if err := srv.images.Delete(ctx, *previous); err != nil {
			srv.log(ctx).Warn("Failed to delete replaced discount image", slog.String("key", *previous), slog.Any("error", err))
		}
	}

	return discount, nil
}

func validateDiscountInput(input usecase.DiscountInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("discount title is required")
	}
	if input.StartsAt.IsZero() {
		return domainerrors.ErrValidationFailed.WrapMessage("discount start is required")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return domainerrors.ErrValidationFailed.WrapMessage("discount must end after it starts")
	}

	return nil
}

func applyDiscountInput(discount *entity.Discount, input usecase.DiscountInput) {
	discount.Title = strings.TrimSpace(input.Title)
	discount.Description = input.Description
	discount.StartsAt = input.StartsAt.UTC()
	discount.EndsAt = nil
	if input.EndsAt != nil {
		endsAt := input.EndsAt.UTC()
		discount.EndsAt = &endsAt
	}
	discount.IsActive = input.IsActive
}
