package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

const defaultGeocodeTTL = 24 * time.Hour

// GeocodeCache decorates a ReverseGeocoder with a Redis lookup keyed on the
// coordinate rounded to about one metre. Only successful lookups are cached.
type GeocodeCache struct {
	next   ports.ReverseGeocoder
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

func NewGeocodeCache(next ports.ReverseGeocoder, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *GeocodeCache {
	if ttl <= 0 {
		ttl = defaultGeocodeTTL
	}
	return &GeocodeCache{next: next, client: client, ttl: ttl, logger: logger}
}

func (g *GeocodeCache) Reverse(ctx context.Context, c domain.Coordinates) (string, error) {
	key := fmt.Sprintf("%sgeo:%.5f,%.5f", keyPrefix, c.Lat, c.Lng)

	address, err := g.client.Get(ctx, key).Result()
	switch {
	case err == nil && address != "":
		return address, nil
	case err != nil && !errors.Is(err, redis.Nil):
		g.logger.Warn().Err(err).Msg("geocode cache read failed")
	}

	address, err = g.next.Reverse(ctx, c)
	if err != nil {
		return "", err
	}
	if address != "" {
		if err := g.client.Set(ctx, key, address, g.ttl).Err(); err != nil {
			g.logger.Warn().Err(err).Msg("geocode cache write failed")
		}
	}
	return address, nil
}
