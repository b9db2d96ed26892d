package services

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/yungbote/sdgraph-backend/internal/clients/redis"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

// GraphCache holds encoded graph payloads. The in-process LRU is checked
// first, then the optional shared Redis cache. Both tiers expire entries
// after ttl. Callers version their keys by store content, so entries are
// never invalidated in place.
type GraphCache struct {
	local   *lru.Cache
	remote  redis.Cache
	ttl     time.Duration
	now     func() time.Time
	metrics *observability.Metrics
	log     *logger.Logger
}

type cacheEntry struct {
	value   []byte
	expires time.Time
}

func NewGraphCache(log *logger.Logger, size int, remote redis.Cache, ttl time.Duration, metrics *observability.Metrics) (*GraphCache, error) {
	if size <= 0 {
		size = 16
	}
	local, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &GraphCache{
		local:   local,
		remote:  remote,
		ttl:     ttl,
		now:     time.Now,
		metrics: metrics,
		log:     log.With("service", "GraphCache"),
	}, nil
}

func (c *GraphCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.local.Get(key); ok {
		e := v.(cacheEntry)
		if c.now().Before(e.expires) {
			c.metrics.ObserveCache("lru", true)
			return e.value, true
		}
		c.local.Remove(key)
	}
	c.metrics.ObserveCache("lru", false)
	if c.remote == nil {
		return nil, false
	}
	b, ok, err := c.remote.Get(ctx, key)
	if err != nil {
		c.log.Warn("Graph cache read failed", "key", key, "error", err)
		return nil, false
	}
	c.metrics.ObserveCache("redis", ok)
	if ok {
		c.addLocal(key, b)
	}
	return b, ok
}

func (c *GraphCache) Set(ctx context.Context, key string, value []byte) {
	if c == nil {
		return
	}
	c.addLocal(key, value)
	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, value, c.ttl); err != nil {
		c.log.Warn("Graph cache write failed", "key", key, "error", err)
	}
}

// Purge drops every local entry. Remote entries age out on their own.
func (c *GraphCache) Purge() {
	if c == nil {
		return
	}
	c.local.Purge()
}

func (c *GraphCache) addLocal(key string, value []byte) {
	c.local.Add(key, cacheEntry{value: value, expires: c.now().Add(c.ttl)})
}
