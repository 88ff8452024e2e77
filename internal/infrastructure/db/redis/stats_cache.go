package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/laporpak/report-service/internal/core/domain"
)

const (
	statsKey        = keyPrefix + "stats:counts"
	defaultStatsTTL = 30 * time.Second
)

// StatsCache holds the last computed status counts for a short time. Every
// report mutation invalidates it; the TTL bounds staleness if an invalidation
// races with a concurrent recompute.
type StatsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewStatsCache(client redis.Cmdable, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) Get(ctx context.Context) (*domain.StatusCounts, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats cache get: %w", err)
	}
	var counts domain.StatusCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, fmt.Errorf("stats cache decode: %w", err)
	}
	return &counts, nil
}

func (c *StatsCache) Set(ctx context.Context, counts domain.StatusCounts) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey, payload, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statsKey).Err()
}
