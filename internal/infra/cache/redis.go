// Package cache holds the Redis client and the stores built on top of it.
package cache

import (
	"context"
	"log/slog"
	"time"

	"fireworks/config"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/lifecycle"
	"fireworks/internal/domain/repository"
	"fireworks/internal/errors"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

const refreshTokenPrefix = "refresh:"

// ClientParams holds dependencies for the Redis client.
type ClientParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewClient parses the configured URL and pings Redis on start.
func NewClient(params ClientParams) (*redis.Client, error) {
	if params.Config.Redis == nil || params.Config.Redis.URL == "" {
		return nil, errors.New("redis url is not configured")
	}

	opt, err := redis.ParseURL(params.Config.Redis.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis url")
	}

	client := redis.NewClient(opt)

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(pingCtx).Err(); err != nil {
				return errors.Wrap(err, "failed to connect to redis")
			}
			params.Logger.Info("Redis connected", slog.String("addr", opt.Addr))

			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

type refreshTokenStore struct {
	rdb redis.Cmdable
}

// NewRefreshTokenStore is the constructor for refreshTokenStore.
func NewRefreshTokenStore(rdb *redis.Client) repository.RefreshTokenStore {
	return &refreshTokenStore{rdb: rdb}
}

func (s *refreshTokenStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshTokenPrefix+token, userID.String(), ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}

func (s *refreshTokenStore) Find(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.rdb.Get(ctx, refreshTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, domainerrors.ErrRefreshTokenInvalid
		}

		return uuid.Nil, errors.Wrap(err, "failed to read refresh token")
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("corrupt refresh token entry")
	}

	return userID, nil
}

func (s *refreshTokenStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, refreshTokenPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "failed to delete refresh token")
	}

	return nil
}
