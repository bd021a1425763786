// Package consumer pulls newsletter dispatch events from RabbitMQ.
package consumer

import (
	"context"
	"log/slog"
	"sync"

	"fireworks/config"
	"fireworks/internal/delivery"
	"fireworks/internal/delivery/worker/handler"
	"fireworks/internal/errors"
	"fireworks/internal/infra/pubsub"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
)

const consumerTag = "fireworks-mailer"

// ConsumerParams holds dependencies for the AMQP consumer
type ConsumerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
	Processor *handler.NewsletterProcessor
}

type amqpConsumer struct {
	cfg       *config.AMQPConfig
	processor *handler.NewsletterProcessor
	logger    *slog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewAMQPConsumer creates a delivery that consumes the newsletter queue with manual acks.
func NewAMQPConsumer(params ConsumerParams) (delivery.Delivery, error) {
	if params.Config.AMQP == nil || params.Config.AMQP.URL == "" {
		return nil, errors.New("amqp url is required for the amqp consumer")
	}

	c := &amqpConsumer{
		cfg:       params.Config.AMQP,
		processor: params.Processor,
		logger:    params.Logger,
		stopped:   make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: c.stop,
	})

	return c, nil
}

// Serve blocks until the consumer is stopped or the broker connection is lost.
func (c *amqpConsumer) Serve(ctx context.Context) error {
	deliveries, err := c.subscribe()
	if err != nil {
		return err
	}

	c.logger.Info("Consuming newsletter events", slog.String("queue", c.cfg.Queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stopped:
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				select {
				case <-c.stopped:
					return nil
				default:
					return errors.New("amqp delivery channel closed unexpectedly")
				}
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *amqpConsumer) subscribe() (<-chan amqp.Delivery, error) {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rabbitmq")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()

		return nil, errors.Wrap(err, "failed to open amqp channel")
	}

	if err := channel.Qos(max(c.cfg.Prefetch, 1), 0, false); err != nil {
		conn.Close()

		return nil, errors.Wrap(err, "failed to set amqp prefetch")
	}

	if err := pubsub.DeclareTopology(channel, c.cfg); err != nil {
		conn.Close()

		return nil, err
	}

	deliveries, err := channel.Consume(c.cfg.Queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		conn.Close()

		return nil, errors.Wrapf(err, "failed to consume queue %s", c.cfg.Queue)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	return deliveries, nil
}

// handle acks processed and malformed messages and requeues retryable failures.
func (c *amqpConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	event, err := pubsub.DecodeEvent(msg.Body)
	if err != nil {
		c.logger.Error("[Worker] Rejecting undecodable newsletter event",
			slog.String("message_id", msg.MessageId),
			slog.Any("error", err),
		)
		c.settle(msg.Reject(false))

		return
	}

	requestID, _ := msg.Headers[pubsub.AttrRequestID].(string)
	if requestID == "" {
		requestID = msg.CorrelationId
	}

	if err := c.processor.Process(ctx, event, requestID); err != nil && handler.IsRetryable(err) {
		c.settle(msg.Nack(false, true))

		return
	}

	c.settle(msg.Ack(false))
}

func (c *amqpConsumer) settle(err error) {
	if err != nil {
		c.logger.Error("[Worker] Failed to acknowledge amqp delivery", slog.Any("error", err))
	}
}

func (c *amqpConsumer) stop(context.Context) error {
	c.stopOnce.Do(func() { close(c.stopped) })

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}

	c.logger.Info("Closing AMQP consumer")

	return errors.WithStack(c.conn.Close())
}
