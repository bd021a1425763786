package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"fireworks/config"
	"fireworks/internal/delivery"
	"fireworks/internal/delivery/api"
	apimiddleware "fireworks/internal/delivery/api/middleware"
	"fireworks/internal/delivery/api/router/handler"
	"fireworks/internal/delivery/telegram"
	"fireworks/internal/infra/auth"
	"fireworks/internal/infra/cache"
	"fireworks/internal/infra/events"
	logs "fireworks/internal/infra/log"
	"fireworks/internal/infra/persistence/postgres"
	"fireworks/internal/infra/qrcode"
	"fireworks/internal/infra/search"
	"fireworks/internal/infra/storage"
	"fireworks/internal/usecase"
	"fireworks/internal/usecase/impl"

	"go.uber.org/fx"
)

const adminPasswordEnv = "ADMIN_PASSWORD"

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	createAdmin := flag.String("create-admin", "", "create or promote a back-office account with this email, then exit; the password is read from "+adminPasswordEnv)
	superuser := flag.Bool("superuser", false, "grant superuser rights to the -create-admin account")
	flag.Parse()

	if *createAdmin != "" {
		if err := runCreateAdmin(*createAdmin, os.Getenv(adminPasswordEnv), *superuser); err != nil {
			slog.Error("Failed to create admin", slog.Any("error", err))
			os.Exit(1)
		}

		return
	}

	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			postgres.RegisterMigrations,
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
		cache.NewClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewUserRepository,
			postgres.NewCategoryRepository,
			postgres.NewProductRepository,
			postgres.NewTagRepository,
			postgres.NewDiscountRepository,
			postgres.NewCartRepository,
			postgres.NewFavoriteRepository,
			postgres.NewAddressRepository,
			postgres.NewOrderRepository,
			postgres.NewNewsletterRepository,
			cache.NewRefreshTokenStore,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewTelegramVerifier,
			qrcode.NewQRCodeServiceFromConfig,
			search.NewProductSearcher,
			storage.NewImageStorage,
			events.NewOrderEventPublisher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewUserService,
			impl.NewCatalogService,
			impl.NewDiscountService,
			impl.NewCartService,
			impl.NewFavoriteService,
			impl.NewAddressService,
			impl.NewOrderService,
			impl.NewNewsletterService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
			apimiddleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewCatalogHandler,
			handler.NewDiscountHandler,
			handler.NewCartHandler,
			handler.NewOrderHandler,
			handler.NewNewsletterHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				telegram.NewBot,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
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

// runCreateAdmin boots only the storage part of the graph, runs migrations and upserts one staff account.
func runCreateAdmin(email, password string, superuser bool) error {
	var users usecase.UserUsecase
	var logger *slog.Logger

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
			postgres.NewTransactionManager,
			postgres.NewUserRepository,
			auth.NewBcryptHasher,
			impl.NewUserService,
		),
		fx.Invoke(postgres.RegisterMigrations),
		fx.Populate(&users, &logger),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(ctx); err != nil {
			logger.Warn("Failed to stop cleanly", slog.Any("error", err))
		}
	}()

	user, err := users.CreateStaff(ctx, usecase.CreateStaffInput{Email: email, Password: password, Superuser: superuser})
	if err != nil {
		return err
	}

	logger.Info("Admin account ready",
		slog.String("user_id", user.ID.String()),
		slog.Bool("superuser", user.IsSuperuser),
	)

	return nil
}
