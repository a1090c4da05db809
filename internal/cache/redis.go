package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	applog "finance-dashboard/internal/log"
)

// keyPrefix namespaces our keys in a shared Redis.
const keyPrefix = "finance:"

type RedisCache struct {
	client *redis.Client
	logger *applog.Logger
}

// RedisOptions turns REDIS_URL into client options. Both a bare host:port and
// a full redis:// URL are accepted.
func RedisOptions(redisURL string) *redis.Options {
	raw := redisURL
	if !strings.Contains(raw, "://") {
		raw = "redis://" + raw
	}
	opt, err := redis.ParseURL(raw)
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{Addr: redisURL}
	}
	return opt
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, redisURL string, logger *applog.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	client := redis.NewClient(RedisOptions(redisURL))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		logger: logger.WithComponent(applog.ComponentCache),
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Cache read failed", applog.FieldCacheKey, key, applog.FieldError, err)
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.SetEx(ctx, keyPrefix+key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
