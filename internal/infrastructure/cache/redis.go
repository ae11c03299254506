package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platewise/backend/internal/domain"
)

// RedisCache stores profiles in Redis so every replica shares one cache.
// Values expire with SET EX; a sorted set scored by an insertion counter
// keeps the same oldest-inserted-first bound as MemoryCache.
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int64
	prefix     string
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, ttl time.Duration, maxEntries int) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &RedisCache{
		client:     client,
		ttl:        ttl,
		maxEntries: int64(maxEntries),
		prefix:     "platewise:",
	}
}

// NewRedisCacheFromURL parses a redis:// URL and verifies the connection
func NewRedisCacheFromURL(ctx context.Context, url string, ttl time.Duration, maxEntries int) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisCache(client, ttl, maxEntries), nil
}

func (c *RedisCache) orderKey() string   { return c.prefix + "order" }
func (c *RedisCache) counterKey() string { return c.prefix + "seq" }

// Get retrieves a profile. Missing or expired entries return ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.NutrientProfile, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired keys leave a stale order entry behind
		c.client.ZRem(ctx, c.orderKey(), key)
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var profile domain.NutrientProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &profile, nil
}

// Set stores a profile and evicts the oldest insertions above capacity
func (c *RedisCache) Set(ctx context.Context, key string, value domain.NutrientProfile) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	seq, err := c.client.Incr(ctx, c.counterKey()).Result()
	if err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.prefix+key, data, c.ttl)
		pipe.ZAddNX(ctx, c.orderKey(), redis.Z{Score: float64(seq), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return c.evict(ctx)
}

// evict drops the earliest-inserted keys while the order set is over capacity
func (c *RedisCache) evict(ctx context.Context) error {
	size, err := c.client.ZCard(ctx, c.orderKey()).Result()
	if err != nil {
		return fmt.Errorf("redis zcard: %w", err)
	}
	excess := size - c.maxEntries
	if excess <= 0 {
		return nil
	}

	victims, err := c.client.ZRange(ctx, c.orderKey(), 0, excess-1).Result()
	if err != nil {
		return fmt.Errorf("redis zrange: %w", err)
	}
	if len(victims) == 0 {
		return nil
	}

	keys := make([]string, len(victims))
	members := make([]interface{}, len(victims))
	for i, v := range victims {
		keys[i] = c.prefix + v
		members[i] = v
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, c.orderKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis evict: %w", err)
	}
	return nil
}

// Delete removes a value from the cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.prefix+key)
		pipe.ZRem(ctx, c.orderKey(), key)
		return nil
	})
	return err
}

// Size returns the number of tracked entries
func (c *RedisCache) Size(ctx context.Context) (int64, error) {
	return c.client.ZCard(ctx, c.orderKey()).Result()
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
