package store

import (
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
)

// dayCache memoizes day-window meeting queries. Calendar views poll the same
// day repeatedly while open; a short write-expiry TTL plus invalidation on
// every meeting write keeps the view fresh without hammering Postgres.
type dayCache struct {
	cache  *otter.Cache[string, []Meeting]
	logger *slog.Logger
	ttl    time.Duration
}

func newDayCache(ttl time.Duration, logger *slog.Logger) *dayCache {
	cache := otter.Must(&otter.Options[string, []Meeting]{
		MaximumSize:      1024,
		ExpiryCalculator: otter.ExpiryWriting[string, []Meeting](ttl),
	})
	return &dayCache{cache: cache, logger: logger, ttl: ttl}
}

func (c *dayCache) get(key string) ([]Meeting, bool) {
	meetings, found := c.cache.GetIfPresent(key)
	if !found {
		c.logger.Debug("day cache miss", "key", key)
		return nil, false
	}
	c.logger.Debug("day cache hit", "key", key, "meetings", len(meetings))
	return meetings, true
}

func (c *dayCache) set(key string, meetings []Meeting) {
	c.cache.Set(key, meetings)
}

// clear drops every cached day. Called after any meeting write; day keys
// cannot be derived from a meeting id cheaply, and the cache is small.
func (c *dayCache) clear() {
	c.cache.All()(func(key string, _ []Meeting) bool {
		c.cache.Invalidate(key)
		return true
	})
}
