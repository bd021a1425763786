// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"fireworks/config"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

const writeTimeout = 5 * time.Second

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher writing JSON events keyed by order id,
// so every event of one order lands on the same partition.
func NewKafkaPublisher(cfg *config.KafkaConfig, logger *slog.Logger) service.OrderEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
	}

	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger *slog.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: writer, logger: logger}
}

func (p *kafkaPublisher) PublishOrderEvent(ctx context.Context, event *service.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode order event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to publish %s for order %s", event.Type, event.OrderID)
	}

	p.logger.Debug("[Kafka] Order event published",
		slog.String("type", event.Type),
		slog.String("order_id", event.OrderID),
	)

	return nil
}

func (p *kafkaPublisher) Close() error {
	return errors.WithStack(p.writer.Close())
}

type noopOrderPublisher struct{}

func (noopOrderPublisher) PublishOrderEvent(context.Context, *service.OrderEvent) error { return nil }

func (noopOrderPublisher) Close() error { return nil }

// PublisherParams holds dependencies for OrderEventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewOrderEventPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewOrderEventPublisher(params PublisherParams) service.OrderEventPublisher {
	cfg := params.Config.Kafka
	if cfg == nil || len(cfg.Brokers) == 0 || cfg.Topic == "" {
		params.Logger.Info("Kafka not configured, order events are dropped")

		return noopOrderPublisher{}
	}

	publisher := NewKafkaPublisher(cfg, params.Logger)
	params.Logger.Info("Kafka order event publisher ready",
		slog.Any("brokers", cfg.Brokers),
		slog.String("topic", cfg.Topic),
	)

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})

	return publisher
}
