package history

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CachedSource memoizes sample lookups of an upstream Source. Every
// proposition of a player shares that player's game log, so a feed with
// over and under lines hits the upstream once per player statistic.
type CachedSource struct {
	upstream  Source
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewCachedSource wraps upstream with a TTL cache. Expired entries are
// purged every cleanup interval; cleanup <= 0 defaults to twice the TTL.
func NewCachedSource(upstream Source, ttl, cleanup time.Duration) *CachedSource {
	if cleanup <= 0 {
		cleanup = ttl * 2
	}
	return &CachedSource{
		upstream: upstream,
		cache:    cache.New(ttl, cleanup),
		ttl:      ttl,
	}
}

func cacheKey(player, stat string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", player, stat, limit)
}

// Samples implements Source
func (c *CachedSource) Samples(ctx context.Context, player, stat string, limit int) ([]float64, error) {
	key := cacheKey(player, stat, limit)
	if v, found := c.cache.Get(key); found {
		if samples, ok := v.([]float64); ok {
			c.hitCount.Add(1)
			return append([]float64(nil), samples...), nil
		}
	}

	c.missCount.Add(1)
	samples, err := c.upstream.Samples(ctx, player, stat, limit)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]float64(nil), samples...), c.ttl)
	return samples, nil
}

// Invalidate drops every cached sample, e.g. after a stats sync
func (c *CachedSource) Invalidate() {
	c.cache.Flush()
}

// Stats returns cache statistics
func (c *CachedSource) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}
