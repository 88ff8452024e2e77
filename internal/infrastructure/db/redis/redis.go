package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultRetryFor = 30 * time.Second
	keyPrefix       = "laporpak:"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr     string
	DB       int
	Timeout  time.Duration
	RetryFor time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping,
// retrying with exponential backoff while the server is unreachable.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryFor := cfg.RetryFor
	if retryFor <= 0 {
		retryFor = defaultRetryFor
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryFor

	err := backoff.RetryNotify(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("redis not reachable, retrying")
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
