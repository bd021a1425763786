package repository

import (
	"context"
	"time"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// NewsletterRepository defines newsletter persistence and audience selection.
type NewsletterRepository interface {
	Create(ctx context.Context, newsletter *entity.Newsletter) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Newsletter, error)
	List(ctx context.Context, opts ListOptions) ([]*entity.Newsletter, int64, error)
	Update(ctx context.Context, newsletter *entity.Newsletter) error
	Cancel(ctx context.Context, id uuid.UUID) error

	// FindDue returns unsent, uncanceled newsletters scheduled at or before now whose
	// claim is absent or older than staleBefore.
	FindDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*entity.Newsletter, error)
	// Claim marks the newsletter as taken by the caller. It reports false when
	// another dispatcher holds a fresh claim or the newsletter is no longer pending.
	Claim(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID) error
	MarkSent(ctx context.Context, id uuid.UUID, sentCount, failedCount int, sentAt time.Time) error

	// FindAudience selects users matching the criteria at the given instant,
	// oldest accounts first. A limit of zero or less returns all of them.
	FindAudience(ctx context.Context, criteria entity.AudienceCriteria, now time.Time, limit int) ([]*entity.User, error)
	CountAudience(ctx context.Context, criteria entity.AudienceCriteria, now time.Time) (int64, error)
}
