package impl

import (
	"context"
	"html"
	"log/slog"
	"time"
	"unicode/utf8"

	"fireworks/config"
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
	// Telegram rejects photo captions longer than this many characters.
	maxCaptionLength = 1024
	newsletterImage  = "newsletter.jpg"
)

// newsletterDispatchService implements the NewsletterDispatchUsecase interface.
type newsletterDispatchService struct {
	newsletterRepo repository.NewsletterRepository
	publisher      service.EventPublisher
	messenger      service.Messenger
	images         service.ImageStorage
	claimTimeout   time.Duration
	batchSize      int
	now            func() time.Time
	logger         *slog.Logger
}

// NewsletterDispatchServiceParams holds dependencies for NewsletterDispatchService, injected by Fx.
type NewsletterDispatchServiceParams struct {
	fx.In

	NewsletterRepo repository.NewsletterRepository
	Publisher      service.EventPublisher
	Messenger      service.Messenger
	Images         service.ImageStorage
	Config         *config.Config
	Logger         *slog.Logger
}

// NewNewsletterDispatchService is the constructor for newsletterDispatchService.
func NewNewsletterDispatchService(params NewsletterDispatchServiceParams) usecase.NewsletterDispatchUsecase {
	claimTimeout := 30 * time.Minute
	batchSize := 10
	if params.Config != nil && params.Config.Newsletter != nil {
		if params.Config.Newsletter.ClaimTimeout > 0 {
			claimTimeout = params.Config.Newsletter.ClaimTimeout
		}
		if params.Config.Newsletter.BatchSize > 0 {
			batchSize = params.Config.Newsletter.BatchSize
		}
	}

	return &newsletterDispatchService{
		newsletterRepo: params.NewsletterRepo,
		publisher:      params.Publisher,
		messenger:      params.Messenger,
		images:         params.Images,
		claimTimeout:   claimTimeout,
		batchSize:      batchSize,
		now:            time.Now,
		logger:         params.Logger,
	}
}

func (srv *newsletterDispatchService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ScheduleDue claims every due newsletter and hands it to the dispatch transport.
// A newsletter another instance claimed first is skipped. A failed publish releases the claim.
func (srv *newsletterDispatchService) ScheduleDue(ctx context.Context) (int, error) {
	now := srv.now().UTC()
	staleBefore := now.Add(-srv.claimTimeout)

	due, err := srv.newsletterRepo.FindDue(ctx, now, staleBefore, srv.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to find due newsletters")
	}

	published := 0
	var errs []error
	for _, newsletter := range due {
		ok, err := srv.schedule(ctx, newsletter, now, staleBefore)
		if err != nil {
			errs = append(errs, err)

			continue
		}
		if ok {
			published++
		}
	}

	return published, errors.Join(errs...)
}

func (srv *newsletterDispatchService) schedule(ctx context.Context, newsletter *entity.Newsletter, now, staleBefore time.Time) (bool, error) {
	logger := srv.log(ctx).With(slog.Any("newsletterID", newsletter.ID))

	claimed, err := srv.newsletterRepo.Claim(ctx, newsletter.ID, now, staleBefore)
	if err != nil {
		return false, errors.Wrap(err, "failed to claim newsletter")
	}
	if !claimed {
		logger.Debug("Newsletter claimed by another dispatcher")

		return false, nil
	}

	users, err := srv.newsletterRepo.FindAudience(ctx, newsletter.Criteria(), now, 0)
	if err != nil {
		srv.release(ctx, newsletter.ID)

		return false, errors.Wrap(err, "failed to resolve newsletter audience")
	}

	chatIDs := chatIDsOf(users)
	if len(chatIDs) == 0 {
		logger.Info("Newsletter audience is empty, marking sent")

		if err := srv.newsletterRepo.MarkSent(ctx, newsletter.ID, 0, 0, now); err != nil {
			return false, errors.Wrap(err, "failed to mark empty newsletter sent")
		}

		return false, nil
	}

	requestID := deliverycontext.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	event := &service.NewsletterEvent{
		RequestID:    requestID,
		NewsletterID: newsletter.ID.String(),
		ChatIDs:      chatIDs,
	}
	if err := srv.publisher.PublishNewsletterEvent(ctx, event); err != nil {
		srv.release(ctx, newsletter.ID)

		return false, errors.Wrap(err, "failed to publish newsletter event")
	}

	logger.Info("Newsletter dispatch published", slog.Int("recipients", len(chatIDs)))

	return true, nil
}

func (srv *newsletterDispatchService) release(ctx context.Context, id uuid.UUID) {
	if err := srv.newsletterRepo.ReleaseClaim(ctx, id); err != nil {
		srv.log(ctx).Error("Failed to release newsletter claim", slog.Any("newsletterID", id), slog.Any("error", err))
	}
}

// Deliver sends the newsletter to every chat of the event one by one, then records the counters.
// Canceling ctx does not interrupt a started delivery.
func (srv *newsletterDispatchService) Deliver(ctx context.Context, event *service.NewsletterEvent) (*usecase.DispatchReport, error) {
	id, err := uuid.Parse(event.NewsletterID)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("invalid newsletter id")
	}

	newsletter, err := srv.newsletterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load newsletter")
	}

	logger := srv.log(ctx).With(slog.Any("newsletterID", id))
	report := &usecase.DispatchReport{NewsletterID: id}

	if newsletter.IsSent || newsletter.IsCanceled {
		logger.Info("Newsletter no longer pending, skipping",
			slog.Bool("sent", newsletter.IsSent),
			slog.Bool("canceled", newsletter.IsCanceled),
		)
		report.Skipped = true

		return report, nil
	}

	sendCtx := context.WithoutCancel(ctx)
	image := srv.loadImage(sendCtx, newsletter)
	text := formatNewsletter(newsletter)

	for _, chatID := range event.ChatIDs {
		if err := srv.sendOne(sendCtx, chatID, newsletter, image, text); err != nil {
			report.Failed++
			logger.Warn("Failed to deliver newsletter", slog.Int64("chatID", chatID), slog.Any("error", err))

			continue
		}
		report.Sent++
	}

	if err := srv.newsletterRepo.MarkSent(sendCtx, id, report.Sent, report.Failed, srv.now().UTC()); err != nil {
		return report, errors.Wrap(err, "failed to mark newsletter sent")
	}

	logger.Info("Newsletter delivered", slog.Int("sent", report.Sent), slog.Int("failed", report.Failed))

	return report, nil
}

func (srv *newsletterDispatchService) sendOne(ctx context.Context, chatID int64, newsletter *entity.Newsletter, image []byte, text string) error {
	if image == nil {
		return srv.messenger.SendText(ctx, chatID, text)
	}

	if utf8.RuneCountInString(text) <= maxCaptionLength {
		return srv.messenger.SendPhoto(ctx, chatID, image, newsletterImage, text)
	}

	if err := srv.messenger.SendPhoto(ctx, chatID, image, newsletterImage, "<b>"+html.EscapeString(newsletter.Title)+"</b>"); err != nil {
		return err
	}

	return srv.messenger.SendText(ctx, chatID, text)
}

// loadImage returns nil when the newsletter has no image or it cannot be read; delivery falls back to text.
func (srv *newsletterDispatchService) loadImage(ctx context.Context, newsletter *entity.Newsletter) []byte {
	if newsletter.ImageKey == nil {
		return nil
	}

	image, err := srv.images.Get(ctx, *newsletter.ImageKey)
	if err != nil {
		srv.log(ctx).Warn("Newsletter image unavailable, sending text only",
			slog.Any("newsletterID", newsletter.ID),
			slog.Any("error", err),
		)

		return nil
	}

	return image
}

func formatNewsletter(newsletter *entity.Newsletter) string {
	return "<b>" + html.EscapeString(newsletter.Title) + "</b>\n\n" + newsletter.Content
}

func chatIDsOf(users []*entity.User) []int64 {
	chatIDs := make([]int64, 0, len(users))
	for _, user := range users {
		if user.TelegramID != nil {
			chatIDs = append(chatIDs, *user.TelegramID)
		}
	}

	return chatIDs
}
