package templatestore

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// errCacheMiss is returned by Cache implementations when a key is absent or expired.
var errCacheMiss = errors.New("templatestore: cache miss")

// Cache stores rendered lookups for Cached.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// cacheEntry holds a cached value with its expiration time and key.
type cacheEntry struct {
	expiresAt time.Time
	value     string
	key       string
}

// MemoryCache is an in-process LRU cache with per-entry expiration.
// Expired entries are dropped when read or when evicted.
type MemoryCache struct {
	now      func() time.Time
	items    map[string]*list.Element
	eviction *list.List
	max      int
	mu       sync.Mutex
}

// NewMemoryCache creates a cache holding at most maxEntries entries (0 = unlimited).
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		now:      time.Now,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		max:      maxEntries,
	}
}

// Get implements Cache. Reading a key marks it as recently used.
func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return "", errCacheMiss
	}
	e := elem.Value.(*cacheEntry)
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.remove(elem)
		return "", errCacheMiss
	}
	m.eviction.MoveToFront(elem)
	return e.value, nil
}

// Set implements Cache. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*cacheEntry)
		e.value = value
		e.expiresAt = expiresAt
		m.eviction.MoveToFront(elem)
		return nil
	}

	if m.max > 0 && len(m.items) >= m.max {
		if oldest := m.eviction.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.eviction.PushFront(&cacheEntry{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Clear implements Cache.
func (m *MemoryCache) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.eviction.Init()
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// remove drops elem. Caller must hold the mutex.
func (m *MemoryCache) remove(elem *list.Element) {
	m.eviction.Remove(elem)
	delete(m.items, elem.Value.(*cacheEntry).key)
}

// RedisCache shares cached lookups between worker processes.
// Keys are stored as "{prefix}:{key}".
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a Redis-backed cache.
// The client should be obtained from pkg/redis.Open.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "courier:templates"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCacheMiss
	}
	return v, err
}

// Set implements Cache. Redis interprets a zero expiration as none.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+":"+key, value, max(ttl, 0)).Err()
}

// Clear removes every key under the prefix using SCAN, which does not block the server.
func (r *RedisCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
