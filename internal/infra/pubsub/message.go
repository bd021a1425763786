package pubsub

import (
	"encoding/json"
	"strconv"

	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
)

// Message attribute keys shared by every transport.
const (
	AttrNewsletterID   = "newsletter_id"
	AttrRequestID      = "request_id"
	AttrRecipientCount = "recipient_count"
)

// PushMessage mirrors the body Google Pub/Sub posts to push subscriptions.
// The local publisher produces the same shape so the worker has one decoder.
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// encodeEvent serializes the event and derives the transport attributes.
func encodeEvent(event *service.NewsletterEvent) ([]byte, map[string]string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode newsletter event")
	}

	attributes := map[string]string{
		AttrNewsletterID:   event.NewsletterID,
		AttrRecipientCount: strconv.Itoa(len(event.ChatIDs)),
	}
	if event.RequestID != "" {
		attributes[AttrRequestID] = event.RequestID
	}

	return data, attributes, nil
}

// DecodeEvent parses an event payload produced by any publisher.
func DecodeEvent(data []byte) (*service.NewsletterEvent, error) {
	var event service.NewsletterEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(err, "failed to decode newsletter event")
	}
	if event.NewsletterID == "" {
		return nil, errors.New("newsletter event without newsletter_id")
	}

	return &event, nil
}
