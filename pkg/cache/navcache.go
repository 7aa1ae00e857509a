package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// NavCache is a TTL cache for market-data payloads keyed by scheme code.
// Values are stored as JSON so the worker and the API share entries.
type NavCache interface {
	Get(ctx context.Context, schemeCode int, out any) error
	Set(ctx context.Context, schemeCode int, value any) error
	Invalidate(ctx context.Context, schemeCode int) error
}

func navKey(schemeCode int) string {
	return fmt.Sprintf("nav:%d", schemeCode)
}

// RedisNavCache backs NavCache with Redis.
type RedisNavCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisNavCache(client *redis.Client, ttl time.Duration) *RedisNavCache {
	return &RedisNavCache{client: client, ttl: ttl}
}

func (c *RedisNavCache) Get(ctx context.Context, schemeCode int, out any) error {
	raw, err := c.client.Get(ctx, navKey(schemeCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *RedisNavCache) Set(ctx context.Context, schemeCode int, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, navKey(schemeCode), raw, c.ttl).Err()
}

func (c *RedisNavCache) Invalidate(ctx context.Context, schemeCode int) error {
	return c.client.Del(ctx, navKey(schemeCode)).Err()
}

// MemoryNavCache is the in-process fallback used when Redis is not configured
// and by tests. Entries expire lazily on read.
type MemoryNavCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[int]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemoryNavCache(ttl time.Duration) *MemoryNavCache {
	return &MemoryNavCache{ttl: ttl, entries: make(map[int]memoryEntry)}
}

func (c *MemoryNavCache) Get(ctx context.Context, schemeCode int, out any) error {
	c.mu.RLock()
	entry, ok := c.entries[schemeCode]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.raw, out)
}

func (c *MemoryNavCache) Set(ctx context.Context, schemeCode int, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[schemeCode] = memoryEntry{raw: raw, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryNavCache) Invalidate(ctx context.Context, schemeCode int) error {
	c.mu.Lock()
	delete(c.entries, schemeCode)
	c.mu.Unlock()
	return nil
}
