package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Cache is a byte cache shared by every API replica.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type cache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewCache connects and pings Redis. It returns nil, nil when no address
// is configured.
func NewCache(log *logger.Logger, cfg Config) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewCacheWithClient(log, rdb, cfg.Prefix), nil
}

func NewCacheWithClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) Cache {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "sdgraph:"
	}
	return &cache{
		log:    log.With("client", "RedisCache"),
		rdb:    rdb,
		prefix: prefix,
	}
}

func (c *cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
