package pubsub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fireworks/config"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpPublisher publishes newsletter events to a RabbitMQ direct exchange.
type amqpPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
	channel  *amqp.Channel
	exchange string
	key      string
	logger   *slog.Logger
}

// NewAMQPPublisher dials RabbitMQ and declares the durable exchange, queue and binding.
func NewAMQPPublisher(cfg *config.AMQPConfig, logger *slog.Logger) (service.EventPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rabbitmq")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()

		return nil, errors.Wrap(err, "failed to open amqp channel")
	}

	if err := DeclareTopology(channel, cfg); err != nil {
		channel.Close()
		conn.Close()

		return nil, err
	}

	logger.Info("AMQP publisher initialized",
		slog.String("exchange", cfg.Exchange),
		slog.String("queue", cfg.Queue),
	)

	return &amqpPublisher{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
		key:      cfg.Queue,
		logger:   logger,
	}, nil
}

// DeclareTopology is shared with the consumer so both sides agree on names.
func DeclareTopology(channel *amqp.Channel, cfg *config.AMQPConfig) error {
	if err := channel.ExchangeDeclare(cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare exchange %s", cfg.Exchange)
	}
	if _, err := channel.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", cfg.Queue)
	}
	if err := channel.QueueBind(cfg.Queue, cfg.Queue, cfg.Exchange, false, nil); err != nil {
		return errors.Wrapf(err, "failed to bind queue %s", cfg.Queue)
	}

	return nil
}

func (p *amqpPublisher) PublishNewsletterEvent(ctx context.Context, event *service.NewsletterEvent) error {
	data, attributes, err := encodeEvent(event)
	if err != nil {
		return err
	}

	headers := make(amqp.Table, len(attributes))
	for key, value := range attributes {
		headers[key] = value
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: event.RequestID,
		MessageId:     event.NewsletterID,
		Timestamp:     time.Now(),
		Headers:       headers,
		Body:          data,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to publish newsletter %s", event.NewsletterID)
	}

	p.logger.Info("[AMQP] Newsletter event published",
		slog.String("newsletter_id", event.NewsletterID),
		slog.Int("recipient_count", len(event.ChatIDs)),
	)

	return nil
}

func (p *amqpPublisher) Close() error {
	if err := p.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.WithStack(err)
	}

	return errors.WithStack(p.conn.Close())
}
