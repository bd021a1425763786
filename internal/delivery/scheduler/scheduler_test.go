package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDispatchUsecase struct {
	mock.Mock
}

func (m *mockDispatchUsecase) ScheduleDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	return args.Int(0), args.Error(1)
}

func (m *mockDispatchUsecase) Deliver(ctx context.Context, event *service.NewsletterEvent) (*usecase.DispatchReport, error) {
	args := m.Called(ctx, event)

	return nil, args.Error(1)
}

func TestScheduler_PollsUntilStopped(t *testing.T) {
	uc := &mockDispatchUsecase{}
	withRequestID := mock.MatchedBy(func(ctx context.Context) bool {
		return deliverycontext.GetRequestIDFromContext(ctx) != ""
	})
	var passes atomic.Int32
	count := func(mock.Arguments) { passes.Add(1) }
	uc.On("ScheduleDue", withRequestID).Return(0, errors.New("database is down")).Run(count).Once()
	uc.On("ScheduleDue", withRequestID).Return(1, nil).Run(count)

	s := newScheduler(5*time.Millisecond, uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	served := make(chan error, 1)
	go func() { served <- s.Serve(context.Background()) }()

	assert.Eventually(t, func() bool {
		return passes.Load() >= 3
	}, time.Second, 5*time.Millisecond, "a failed pass must not stop polling")

	require.NoError(t, s.stop(context.Background()))
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after stop")
	}
}

func TestScheduler_StopsWithContext(t *testing.T) {
	uc := &mockDispatchUsecase{}
	uc.On("ScheduleDue", mock.Anything).Return(0, nil)

	s := newScheduler(time.Hour, uc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, s.Serve(ctx))
	uc.AssertNumberOfCalls(t, "ScheduleDue", 1)
}
