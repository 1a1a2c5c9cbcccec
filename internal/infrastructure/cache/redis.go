package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/traveldesk/travel-approval/internal/application/port"
	"go.uber.org/zap"
)

// RedisCache is a port.Cache backed by Redis, for deployments running
// more than one instance of the service. Cache failures are logged and
// treated as misses; the database stays the source of truth.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a cache over an existing Redis client
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Redis scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Redis delete failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// Verify interface compliance
var _ port.Cache = (*RedisCache)(nil)
