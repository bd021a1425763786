// Package telegram wraps the Telegram Bot API client.
package telegram

import (
	"log/slog"
	"net/http"
	"time"

	"fireworks/config"
	"fireworks/internal/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
)

const defaultRequestTimeout = 90 * time.Second

// BotParams holds dependencies for the bot client, injected by Fx
type BotParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewBotAPI authenticates against the Bot API with the configured token.
func NewBotAPI(params BotParams) (*tgbotapi.BotAPI, error) {
	cfg := params.Config.Telegram
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("telegram token is not configured")
	}

	endpoint := tgbotapi.APIEndpoint
	if cfg.APIEndpoint != "" {
		endpoint = cfg.APIEndpoint
	}

	// The client timeout must exceed the long-poll timeout.
	timeout := defaultRequestTimeout
	if pollTimeout := time.Duration(cfg.Timeout) * time.Second; pollTimeout+30*time.Second > timeout {
		timeout = pollTimeout + 30*time.Second
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "failed to authenticate telegram bot")
	}
	bot.Debug = params.Config.Env.Debug

	params.Logger.Info("Telegram bot authorized", slog.String("username", bot.Self.UserName))

	return bot, nil
}
