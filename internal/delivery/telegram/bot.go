// Package telegram is the bot front-end of the shop: catalog, cart, favorites and orders over long polling.
package telegram

import (
	"context"
	"log/slog"
	"sync"

	"fireworks/config"
	"fireworks/internal/delivery"
	infratelegram "fireworks/internal/infra/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
)

// Client is the part of *tgbotapi.BotAPI the bot uses.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotParams holds dependencies for the bot delivery, injected by Fx
type BotParams struct {
	fx.In

	Lc       fx.Lifecycle
	Config   *config.Config
	Logger   *slog.Logger
	Usecases Usecases
}

type bot struct {
	client  Client
	handler *Handler
	timeout int
	logger  *slog.Logger

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewBot creates the long-poll delivery. It does nothing when polling is disabled.
func NewBot(params BotParams) (delivery.Delivery, error) {
	cfg := params.Config.Telegram
	if cfg == nil || !cfg.Polling {
		return disabledBot{logger: params.Logger}, nil
	}

	api, err := infratelegram.NewBotAPI(infratelegram.BotParams{Config: params.Config, Logger: params.Logger})
	if err != nil {
		return nil, err
	}

	b := newBot(api, NewHandler(params.Usecases, api, params.Logger), cfg.Timeout, params.Logger)
	params.Lc.Append(fx.Hook{
		OnStop: b.stop,
	})

	return b, nil
}

func newBot(client Client, handler *Handler, timeout int, logger *slog.Logger) *bot {
	return &bot{
		client:  client,
		handler: handler,
		timeout: timeout,
		logger:  logger,
		stopped: make(chan struct{}),
	}
}

// Serve processes updates one at a time until stopped.
func (b *bot) Serve(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.timeout
	updates := b.client.GetUpdatesChan(updateConfig)

	b.logger.Info("Starting Telegram bot long polling", slog.Int("timeout", b.timeout))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.stopped:
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update)
		}
	}
}

func (b *bot) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("[Bot] Panic while handling update", slog.Int("update_id", update.UpdateID), slog.Any("panic", r))
		}
	}()

	b.handler.HandleUpdate(ctx, update)
}

func (b *bot) stop(context.Context) error {
	b.stopOnce.Do(func() {
		close(b.stopped)
		b.client.StopReceivingUpdates()
	})

	b.logger.Info("Telegram bot stopped")

	return nil
}

type disabledBot struct {
	logger *slog.Logger
}

func (d disabledBot) Serve(context.Context) error {
	d.logger.Info("Telegram bot polling disabled")

	return nil
}
