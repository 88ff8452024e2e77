package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetryFor = time.Minute
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
	// RetryFor bounds how long Connect keeps retrying an unreachable server.
	RetryFor time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. Failed attempts are
// retried with exponential backoff until RetryFor elapses or ctx is done.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryFor := cfg.RetryFor
	if retryFor <= 0 {
		retryFor = defaultRetryFor
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryFor

	var client *mongo.Client
	err := backoff.RetryNotify(func() error {
		c, err := connectOnce(ctx, cfg.URI, timeout)
		if err != nil {
			return err
		}
		client = c
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("mongo not reachable, retrying")
	})
	if err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}

func connectOnce(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}
