package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores serialized weather payloads with a TTL. Implementations
// must treat misses and backend failures the same way: return false.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
}

// RedisCache caches weather responses in Redis so repeated chat turns for
// the same farm do not hammer the upstream API.
type RedisCache struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

func NewRedisCache(addr string, logger *zap.Logger) (*RedisCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, logger: logger}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("Weather cache read failed", zap.Error(err), zap.String("key", key))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Weather cache entry corrupt", zap.Error(err), zap.String("key", key))
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("Weather cache write failed", zap.Error(err), zap.String("key", key))
	}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// NoopCache satisfies Cache when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dest any) bool { return false }

func (NoopCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {}
