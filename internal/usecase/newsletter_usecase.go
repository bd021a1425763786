package usecase

import (
	"context"
	"time"

	"fireworks/internal/domain/entity"
	"fireworks/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// NewsletterInput is the writable part of a newsletter.
type NewsletterInput struct {
	Title             string
	Content           string
	AgeVerified       bool
	AccountAge        *entity.AccountAge
	NumberOfOrders    int
	UsersRelatedToTag bool
	TagIDs            []uuid.UUID
	SendAt            time.Time
}

// --- Output DTOs ---

// NewsletterListOutput is one page of newsletters.
type NewsletterListOutput struct {
	Newsletters []*entity.Newsletter
	Total       int64
}

// AudiencePreview shows how many users a newsletter would reach right now.
type AudiencePreview struct {
	Count  int64
	Sample []*entity.User
}

// DispatchReport summarizes a delivered newsletter.
type DispatchReport struct {
	NewsletterID uuid.UUID
	Sent         int
	Failed       int
	Skipped      bool // The newsletter was already sent or canceled.
}

// NewsletterUsecase defines newsletter management for staff.
type NewsletterUsecase interface {
	Create(ctx context.Context, input NewsletterInput) (*entity.Newsletter, error)
	// Update fails with ErrNewsletterLocked once the newsletter is sent, canceled or being dispatched.
	Update(ctx context.Context, id uuid.UUID, input NewsletterInput) (*entity.Newsletter, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Newsletter, error)
	List(ctx context.Context, page Page) (*NewsletterListOutput, error)
	UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*entity.Newsletter, error)
	Preview(ctx context.Context, id uuid.UUID, sampleSize int) (*AudiencePreview, error)
}

// NewsletterDispatchUsecase defines scheduling and delivery of due newsletters.
type NewsletterDispatchUsecase interface {
	// ScheduleDue claims due newsletters and publishes a dispatch event for each. It returns the number published.
	ScheduleDue(ctx context.Context) (int, error)
	// Deliver sends a claimed newsletter to the recipients of the event and marks it sent.
	Deliver(ctx context.Context, event *service.NewsletterEvent) (*DispatchReport, error)
}
