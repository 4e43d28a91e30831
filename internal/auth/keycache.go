package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyCacheKey is the redis key holding the JWKS document.
const DefaultKeyCacheKey = "coffee-shop:jwks"

// KeyCache stores the raw JWKS document. Get returns nil, nil on a miss.
type KeyCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, doc []byte, ttl time.Duration) error
}

// RedisKeyCache keeps the key set in Redis so every instance shares one copy.
type RedisKeyCache struct {
	client *redis.Client
	key    string
}

// NewRedisKeyCache wraps a redis client.
func NewRedisKeyCache(client *redis.Client, key string) *RedisKeyCache {
	if key == "" {
		key = DefaultKeyCacheKey
	}
	return &RedisKeyCache{client: client, key: key}
}

func (c *RedisKeyCache) Get(ctx context.Context) ([]byte, error) {
	doc, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *RedisKeyCache) Set(ctx context.Context, doc []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key, doc, ttl).Err()
}

// MemoryKeyCache keeps the key set in process when Redis is not configured.
type MemoryKeyCache struct {
	mu      sync.Mutex
	doc     []byte
	expires time.Time
	now     func() time.Time
}

// NewMemoryKeyCache creates an empty cache. A nil clock uses time.Now.
func NewMemoryKeyCache(now func() time.Time) *MemoryKeyCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryKeyCache{now: now}
}

func (c *MemoryKeyCache) Get(context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil || !c.now().Before(c.expires) {
		return nil, nil
	}
	return c.doc, nil
}

func (c *MemoryKeyCache) Set(_ context.Context, doc []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = append([]byte(nil), doc...)
	c.expires = c.now().Add(ttl)
	return nil
}
