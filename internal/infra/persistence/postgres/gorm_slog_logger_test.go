package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/errors"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGormSlogLogger_Trace(t *testing.T) {
	statement := func() (string, int64) { return `SELECT * FROM "orders"`, 3 }

	tests := []struct {
		name    string
		debug   bool
		elapsed time.Duration
		err     error
		want    string
	}{
		{name: "fast query outside debug", want: ""},
		{name: "fast query in debug", debug: true, want: "msg=Query"},
		{name: "slow query", elapsed: time.Second, want: "msg=\"Slow query\""},
		{name: "failed query", err: errors.New("deadlock detected"), want: "error=\"deadlock detected\""},
		{name: "missing row", err: gorm.ErrRecordNotFound, want: ""},
		{name: "canceled request", err: errors.WithStack(context.Canceled), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			gormLogger := NewGormSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)), tt.debug)

			gormLogger.Trace(context.Background(), time.Now().Add(-tt.elapsed), statement, tt.err)

			if tt.want == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "rows=3")
		})
	}
}

func TestGormSlogLogger_UsesRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	gormLogger := NewGormSlogLogger(slog.New(slog.NewTextHandler(&base, nil)), false)
	requestLogger := slog.New(slog.NewTextHandler(&scoped, nil)).With(slog.String("request_id", "req-42"))
	ctx := deliverycontext.WithLogger(context.Background(), requestLogger)

	gormLogger.Trace(ctx, time.Now(), func() (string, int64) { return "UPDATE orders", 0 }, errors.New("boom"))
	gormLogger.Warn(ctx, "reconnecting %d", 2)

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), "request_id=req-42")
	assert.Contains(t, scoped.String(), "message=\"reconnecting 2\"")
}
