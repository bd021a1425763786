// Package scheduler periodically hands due newsletters to the dispatch pipeline.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fireworks/config"
	"fireworks/internal/delivery"
	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// SchedulerParams holds dependencies for the newsletter scheduler
type SchedulerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Config     *config.Config
	DispatchUC usecase.NewsletterDispatchUsecase
	Logger     *slog.Logger
}

type scheduler struct {
	interval   time.Duration
	dispatchUC usecase.NewsletterDispatchUsecase
	logger     *slog.Logger

	stopped  chan struct{}
	stopOnce sync.Once
	running  sync.WaitGroup
}

// NewScheduler creates a delivery that polls for due newsletters every PollInterval.
func NewScheduler(params SchedulerParams) delivery.Delivery {
	s := newScheduler(params.Config.Newsletter.PollInterval, params.DispatchUC, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s
}

func newScheduler(interval time.Duration, dispatchUC usecase.NewsletterDispatchUsecase, logger *slog.Logger) *scheduler {
	return &scheduler{
		interval:   interval,
		dispatchUC: dispatchUC,
		logger:     logger,
		stopped:    make(chan struct{}),
	}
}

// Serve runs a first pass immediately, then one per tick until stopped.
func (s *scheduler) Serve(ctx context.Context) error {
	s.running.Add(1)
	defer s.running.Done()

	s.logger.Info("Starting newsletter scheduler", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-s.stopped:
			return nil
		case <-ticker.C:
		}
	}
}

func (s *scheduler) tick(ctx context.Context) {
	requestID := uuid.NewString()
	logger := s.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, logger)

	published, err := s.dispatchUC.ScheduleDue(ctx)
	if err != nil {
		logger.Error("[Scheduler] Failed to schedule due newsletters", slog.Any("error", err))

		return
	}
	if published > 0 {
		logger.Info("[Scheduler] Due newsletters published", slog.Int("count", published))
	}
}

// stop waits for the pass in flight so a claimed newsletter is always published or released.
func (s *scheduler) stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopped) })

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("[Scheduler] Stopped before the current pass finished")
	}

	s.logger.Info("Newsletter scheduler stopped")

	return nil
}
