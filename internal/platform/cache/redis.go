// Package cache provides a small TTL'd key-value client backed by Redis.
// Failures degrade to cache misses rather than propagating: the callers
// treat the cache as an optimization, never as a source of truth.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkpay/linkpay/internal/config"
	"github.com/redis/go-redis/v9"
)

// Cache is the key-value contract the rest of the application depends on
type Cache interface {
	// Get returns the cached value, or ("", false) on a miss. Backend
	// failures are reported as misses.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value with a TTL. Errors are logged, not returned.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes a key.
	Delete(ctx context.Context, key string)
}

// RedisCache implements Cache on top of go-redis
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection with a ping
func NewRedisCache(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client connected", "addr", opts.Addr)

	return &RedisCache{
		client: client,
		logger: logger,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("Failed to get cache key", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache key", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Failed to delete cache key", "key", key, "error", err)
	}
}

// Close releases the underlying Redis connection
func (c *RedisCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	c.logger.Info("Redis client disconnected")
	return nil
}
