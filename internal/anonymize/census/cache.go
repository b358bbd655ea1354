package census

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	cacheKeyPrefix = "census:area:"
	cacheTTL       = 24 * time.Hour

	// prefetchConcurrency bounds parallel warm-up lookups.
	prefetchConcurrency = 4
)

// CachedSource fronts another source with a Redis cache. Cache failures are
// logged and the lookup falls through to the inner source, so a degraded
// Redis never blocks risk scoring.
type CachedSource struct {
	inner  Source
	client *redis.Client
	logger *slog.Logger
}

// NewCachedSource wraps inner with the given Redis client.
func NewCachedSource(inner Source, client *redis.Client, logger *slog.Logger) *CachedSource {
	return &CachedSource{inner: inner, client: client, logger: logger}
}

func (c *CachedSource) CensusData(ctx context.Context, geography string) (Data, error) {
	key := cacheKeyPrefix + normalizeGeography(geography)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var data Data
		if unmarshalErr := json.Unmarshal([]byte(raw), &data); unmarshalErr == nil {
			return data, nil
		}
		c.logger.Warn("corrupt census cache entry", "key", key)
	} else if err != redis.Nil {
		c.logger.Warn("census cache read failed", "key", key, "error", err)
	}

	data, err := c.inner.CensusData(ctx, geography)
	if err != nil {
		return Data{}, fmt.Errorf("census lookup for %q: %w", geography, err)
	}

	if encoded, marshalErr := json.Marshal(data); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, cacheTTL).Err(); setErr != nil {
			c.logger.Warn("census cache write failed", "key", key, "error", setErr)
		}
	}
	return data, nil
}

// Prefetch warms the cache for a set of geographies before a scoring run.
// Individual failures are logged and skipped.
func (c *CachedSource) Prefetch(ctx context.Context, geographies []string) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)
	for _, geography := range geographies {
		g.Go(func() error {
			if _, err := c.CensusData(ctx, geography); err != nil {
				c.logger.Warn("census prefetch failed", "geography", geography, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
