package main

import (
	"context"
	"log/slog"
	"os"

	"fireworks/config"
	"fireworks/internal/delivery"
	"fireworks/internal/delivery/scheduler"
	"fireworks/internal/delivery/worker"
	"fireworks/internal/delivery/worker/consumer"
	"fireworks/internal/delivery/worker/handler"
	"fireworks/internal/domain/constants"
	logs "fireworks/internal/infra/log"
	"fireworks/internal/infra/persistence/postgres"
	"fireworks/internal/infra/pubsub"
	"fireworks/internal/infra/storage"
	"fireworks/internal/infra/telegram"
	"fireworks/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		telegram.NewBotAPI,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewNewsletterRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			telegram.NewMessenger,
			storage.NewImageStorage,
			pubsub.NewEventPublisher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewNewsletterDispatchService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewNewsletterProcessor,
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				scheduler.NewScheduler,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				newDispatchDelivery,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

type dispatchParams struct {
	fx.In

	Server   worker.ServerParams
	Consumer consumer.ConsumerParams
}

// newDispatchDelivery consumes the queue directly for AMQP and serves the push endpoint otherwise.
func newDispatchDelivery(params dispatchParams) (delivery.Delivery, error) {
	cfg := params.Server.Cfg
	if cfg.PubSub != nil && cfg.PubSub.Provider == constants.PubSubProviderAMQP {
		return consumer.NewAMQPConsumer(params.Consumer)
	}

	return worker.NewServer(params.Server)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
