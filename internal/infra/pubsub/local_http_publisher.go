package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	"github.com/google/uuid"
)

const localSubscription = "projects/local/subscriptions/newsletter-dispatch"

// localHTTPPublisher posts push messages straight to the mailer worker,
// standing in for a Pub/Sub push subscription during development.
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLocalHTTPPublisher creates a new local HTTP publisher for development
func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint: endpoint,
		// Sending a newsletter is sequential per chat, so the worker may take a while to answer.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

// PublishNewsletterEvent posts the event and treats any non-2xx answer as a failure.
func (p *localHTTPPublisher) PublishNewsletterEvent(ctx context.Context, event *service.NewsletterEvent) error {
	data, attributes, err := encodeEvent(event)
	if err != nil {
		return err
	}

	pushMsg := PushMessage{Subscription: localSubscription}
	pushMsg.Message.Data = base64.StdEncoding.EncodeToString(data)
	pushMsg.Message.Attributes = attributes
	pushMsg.Message.MessageID = uuid.NewString()
	pushMsg.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(pushMsg)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.RequestID != "" {
		req.Header.Set("X-Request-Id", event.RequestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to push newsletter %s", event.NewsletterID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("worker returned non-success status: %d", resp.StatusCode)
	}

	p.logger.Info("[LocalPubSub] Newsletter event pushed",
		slog.String("endpoint", p.endpoint),
		slog.String("newsletter_id", event.NewsletterID),
		slog.Int("recipient_count", len(event.ChatIDs)),
	)

	return nil
}

func (p *localHTTPPublisher) Close() error {
	return nil
}
