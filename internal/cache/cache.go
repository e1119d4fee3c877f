// Package cache stores JSON values in Redis. A nil *Cache is valid and
// behaves as an always-missing cache, so callers never branch on whether
// Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "leafwise:"

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect returns nil, nil when no Redis address is configured.
func Connect(ctx context.Context, cfg *config.Config) (*Cache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache.Connect: %w", err)
	}
	return New(rdb, cfg.CacheTTL), nil
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get decodes the value at namespace:key into result. found is false on a
// miss.
func (c *Cache) Get(ctx context.Context, namespace, key string, result any) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, keyPrefix+namespace+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues(namespace, "miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues(namespace, "error").Inc()
		return false, fmt.Errorf("cache.Get: %w", err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		metrics.CacheLookups.WithLabelValues(namespace, "error").Inc()
		return false, fmt.Errorf("cache.Get: %w", err)
	}
	metrics.CacheLookups.WithLabelValues(namespace, "hit").Inc()
	return true, nil
}

func (c *Cache) Set(ctx context.Context, namespace, key string, value any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache.Set: %w", err)
	}
	return c.rdb.Set(ctx, keyPrefix+namespace+":"+key, data, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, namespace, key string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, keyPrefix+namespace+":"+key).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
