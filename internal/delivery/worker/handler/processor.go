// Package handler turns newsletter dispatch events into deliveries, whatever transport brought them.
package handler

import (
	"context"
	"log/slog"

	deliverycontext "fireworks/internal/delivery/context"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// ProcessorParams holds dependencies for the NewsletterProcessor
type ProcessorParams struct {
	fx.In

	DispatchUC usecase.NewsletterDispatchUsecase
	Logger     *slog.Logger
}

// NewsletterProcessor delivers dispatch events under a request-scoped logger.
type NewsletterProcessor struct {
	dispatchUC usecase.NewsletterDispatchUsecase
	logger     *slog.Logger
}

// NewNewsletterProcessor creates a new NewsletterProcessor
func NewNewsletterProcessor(params ProcessorParams) *NewsletterProcessor {
	return &NewsletterProcessor{
		dispatchUC: params.DispatchUC,
		logger:     params.Logger,
	}
}

// Process delivers the event. An empty requestID gets a fresh one.
func (p *NewsletterProcessor) Process(ctx context.Context, event *service.NewsletterEvent, requestID string) error {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	reqLogger := p.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing newsletter event",
		slog.String("newsletter_id", event.NewsletterID),
		slog.Int("recipient_count", len(event.ChatIDs)),
	)

	report, err := p.dispatchUC.Deliver(ctx, event)
	if err != nil {
		reqLogger.Error("[Worker] Failed to deliver newsletter",
			slog.String("newsletter_id", event.NewsletterID),
			slog.Bool("retryable", IsRetryable(err)),
			slog.Any("error", err),
		)

		return err
	}

	reqLogger.Info("[Worker] Newsletter event processed",
		slog.String("newsletter_id", event.NewsletterID),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Bool("skipped", report.Skipped),
	)

	return nil
}

// IsRetryable reports whether redelivering the event may succeed.
// Client errors such as an unknown newsletter are final, everything else is retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode() >= 500
	}

	return true
}
