package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

type dispatchFixtures struct {
	store     *testStore
	publisher *mockEventPublisher
	messenger *mockMessenger
	images    service.ImageStorage
	service   *newsletterDispatchService
}

func createTestDispatchService(t *testing.T) dispatchFixtures {
	store := newTestStore(t)
	publisher := &mockEventPublisher{}
	messenger := &mockMessenger{}
	images := storage.NewBlobStorage(memblob.OpenBucket(nil))

	srv := NewNewsletterDispatchService(NewsletterDispatchServiceParams{
		NewsletterRepo: store.newsletters,
		Publisher:      publisher,
		Messenger:      messenger,
		Images:         images,
		Config:         newTestConfig(),
		Logger:         newDiscardLogger(),
	})

	return dispatchFixtures{
		store:     store,
		publisher: publisher,
		messenger: messenger,
		images:    images,
		service:   srv.(*newsletterDispatchService),
	}
}

func (f dispatchFixtures) seedDueNewsletter(t *testing.T, mutate func(n *entity.Newsletter)) *entity.Newsletter {
	t.Helper()

	newsletter := &entity.Newsletter{
		Title:   "Salute & Co",
		Content: "Fireworks for <b>everyone</b>",
		SendAt:  time.Now().UTC().Add(-time.Minute),
	}
	if mutate != nil {
		mutate(newsletter)
	}
	require.NoError(t, f.store.newsletters.Create(context.Background(), newsletter))

	return newsletter
}

func TestNewsletterRepository_ClaimIsExclusive(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()
	newsletter := f.seedDueNewsletter(t, nil)

	now := time.Now().UTC()
	staleBefore := now.Add(-30 * time.Minute)

	first, err := f.store.newsletters.Claim(ctx, newsletter.ID, now, staleBefore)
	require.NoError(t, err)
	second, err := f.store.newsletters.Claim(ctx, newsletter.ID, now, staleBefore)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)

	// A claim older than the timeout can be taken over.
	takeover, err := f.store.newsletters.Claim(ctx, newsletter.ID, now.Add(time.Hour), now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, takeover)
}

func TestNewsletterDispatchService_ScheduleDue(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()

	alice := f.store.seedUser(t, nil)
	bob := f.store.seedUser(t, nil)
	// Staff without Telegram is never a recipient.
	email := "staff@example.com"
	f.store.seedUser(t, func(u *entity.User) {
		u.TelegramID = nil
		u.Email = &email
	})

	newsletter := f.seedDueNewsletter(t, nil)
	f.seedDueNewsletter(t, func(n *entity.Newsletter) { n.SendAt = time.Now().UTC().Add(time.Hour) })

	f.publisher.On("PublishNewsletterEvent", mock.Anything, mock.MatchedBy(func(e *service.NewsletterEvent) bool {
		return e.NewsletterID == newsletter.ID.String() &&
			sameChats(e.ChatIDs, *alice.TelegramID, *bob.TelegramID) &&
			e.RequestID != ""
	})).Return(nil).Once()

	published, err := f.service.ScheduleDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	f.publisher.AssertExpectations(t)

	stored, err := f.store.newsletters.FindByID(ctx, newsletter.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ClaimedAt)
	assert.False(t, stored.IsSent)

	// The fresh claim hides the newsletter from the next tick.
	published, err = f.service.ScheduleDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
	f.publisher.AssertNumberOfCalls(t, "PublishNewsletterEvent", 1)
}

func TestNewsletterDispatchService_ScheduleDue_PublishFailureReleasesClaim(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()

	f.store.seedUser(t, nil)
	newsletter := f.seedDueNewsletter(t, nil)

	f.publisher.On("PublishNewsletterEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	published, err := f.service.ScheduleDue(ctx)
	require.Error(t, err)
	assert.Zero(t, published)

	stored, err := f.store.newsletters.FindByID(ctx, newsletter.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ClaimedAt)
	assert.False(t, stored.IsSent)

	f.publisher.On("PublishNewsletterEvent", mock.Anything, mock.Anything).Return(nil).Once()

	published, err = f.service.ScheduleDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, published)
}

func TestNewsletterDispatchService_ScheduleDue_EmptyAudience(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()

	f.store.seedUser(t, nil)
	newsletter := f.seedDueNewsletter(t, func(n *entity.Newsletter) { n.AgeVerified = true })

	published, err := f.service.ScheduleDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
	f.publisher.AssertNotCalled(t, "PublishNewsletterEvent", mock.Anything, mock.Anything)

	stored, err := f.store.newsletters.FindByID(ctx, newsletter.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSent)
	assert.Zero(t, stored.SentCount)
}

func TestNewsletterDispatchService_ScheduleDue_SkipsCanceled(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()

	f.store.seedUser(t, nil)
	newsletter := f.seedDueNewsletter(t, nil)
	require.NoError(t, f.store.newsletters.Cancel(ctx, newsletter.ID))

	published, err := f.service.ScheduleDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
	f.publisher.AssertNotCalled(t, "PublishNewsletterEvent", mock.Anything, mock.Anything)
}

func TestNewsletterDispatchService_Deliver(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()
	newsletter := f.seedDueNewsletter(t, nil)

	expectedText := "<b>Salute &amp; Co</b>\n\nFireworks for <b>everyone</b>"
	f.messenger.On("SendText", mock.Anything, int64(100), expectedText).Return(nil).Once()
	f.messenger.On("SendText", mock.Anything, int64(200), expectedText).Return(errors.New("bot was blocked by the user")).Once()
	f.messenger.On("SendText", mock.Anything, int64(300), expectedText).Return(nil).Once()

	report, err := f.service.Deliver(ctx, &service.NewsletterEvent{
		NewsletterID: newsletter.ID.String(),
		ChatIDs:      []int64{100, 200, 300},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Skipped)
	f.messenger.AssertExpectations(t)

	stored, err := f.store.newsletters.FindByID(ctx, newsletter.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSent)
	assert.NotNil(t, stored.SentAt)
	assert.Equal(t, 2, stored.SentCount)
	assert.Equal(t, 1, stored.FailedCount)

	// Redelivery of the same event is a no-op.
	report, err = f.service.Deliver(ctx, &service.NewsletterEvent{NewsletterID: newsletter.ID.String(), ChatIDs: []int64{100}})
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	f.messenger.AssertNumberOfCalls(t, "SendText", 3)
}

func TestNewsletterDispatchService_Deliver_SkipsCanceled(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()
	newsletter := f.seedDueNewsletter(t, nil)
	require.NoError(t, f.store.newsletters.Cancel(ctx, newsletter.ID))

	report, err := f.service.Deliver(ctx, &service.NewsletterEvent{NewsletterID: newsletter.ID.String(), ChatIDs: []int64{1}})
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	f.messenger.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewsletterDispatchService_Deliver_WithImage(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()

	key := "newsletters/" + uuid.NewString() + "/banner"
	image := []byte("\x89PNG")
	require.NoError(t, f.images.Put(ctx, key, image, "image/png"))

	short := f.seedDueNewsletter(t, func(n *entity.Newsletter) { n.ImageKey = &key })
	long := f.seedDueNewsletter(t, func(n *entity.Newsletter) {
		n.ImageKey = &key
		n.Content = strings.Repeat("boom ", 300)
	})

	f.messenger.On("SendPhoto", mock.Anything, int64(1), image, newsletterImage, formatNewsletter(short)).Return(nil).Once()

	report, err := f.service.Deliver(ctx, &service.NewsletterEvent{NewsletterID: short.ID.String(), ChatIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	f.messenger.On("SendPhoto", mock.Anything, int64(1), image, newsletterImage, "<b>Salute &amp; Co</b>").Return(nil).Once()
	f.messenger.On("SendText", mock.Anything, int64(1), formatNewsletter(long)).Return(nil).Once()

	report, err = f.service.Deliver(ctx, &service.NewsletterEvent{NewsletterID: long.ID.String(), ChatIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	f.messenger.AssertExpectations(t)
}

func TestNewsletterDispatchService_Deliver_MissingImageFallsBackToText(t *testing.T) {
	f := createTestDispatchService(t)
	ctx := context.Background()

	missing := "newsletters/gone"
	newsletter := f.seedDueNewsletter(t, func(n *entity.Newsletter) { n.ImageKey = &missing })

	f.messenger.On("SendText", mock.Anything, int64(7), formatNewsletter(newsletter)).Return(nil).Once()

	report, err := f.service.Deliver(ctx, &service.NewsletterEvent{NewsletterID: newsletter.ID.String(), ChatIDs: []int64{7}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	f.messenger.AssertNotCalled(t, "SendPhoto", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNewsletterDispatchService_Deliver_InvalidEvent(t *testing.T) {
	f := createTestDispatchService(t)

	_, err := f.service.Deliver(context.Background(), &service.NewsletterEvent{NewsletterID: "not-a-uuid"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	_, err = f.service.Deliver(context.Background(), &service.NewsletterEvent{NewsletterID: uuid.NewString()})
	assert.True(t, errors.Is(err, domainerrors.ErrNewsletterNotFound))
}

func sameChats(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}

	seen := make(map[int64]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
	}

	return true
}
