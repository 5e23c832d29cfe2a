package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-value cache with per-entry TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache stores entries as plain redis strings under a common prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache builds a Redis-backed cache.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Store.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set implements Store.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// memoryCapacity bounds the in-process cache; the least recently stored entries go first.
const memoryCapacity = 10_000

// Memory is an in-process Store, used when no redis is configured.
type Memory struct {
	entries *ttlcache.Cache[string, []byte]
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return newMemory(memoryCapacity)
}

func newMemory(capacity uint64) *Memory {
	return &Memory{entries: ttlcache.New[string, []byte](
		ttlcache.WithCapacity[string, []byte](capacity),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	item := m.entries.Get(key)
	if item == nil {
		return nil, ErrMiss
	}
	return item.Value(), nil
}

// Set implements Store. A zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.entries.Set(key, append([]byte(nil), value...), ttl)
	return nil
}
