package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/platewise/backend/internal/domain"
)

const (
	// DefaultTTL is how long a finished profile stays servable
	DefaultTTL = 12 * time.Hour
	// DefaultMaxEntries bounds the number of cached profiles
	DefaultMaxEntries = 200

	cleanupInterval = 10 * time.Minute
)

// cacheItem represents a single profile with its store time
type cacheItem struct {
	key      string
	value    domain.NutrientProfile
	storedAt time.Time
}

// MemoryCache is a thread-safe bounded cache with TTL support.
// When full, the entry inserted earliest is evicted; overwriting a key
// keeps its original position.
type MemoryCache struct {
	mutex      sync.Mutex
	data       map[string]*list.Element
	order      *list.List
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	stop       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryCache creates a new in-memory cache. Non-positive arguments fall
// back to DefaultTTL and DefaultMaxEntries.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	cache := &MemoryCache{
		data:       make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a profile. Missing or expired entries return ErrCacheMiss.
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.NutrientProfile, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	item := el.Value.(*cacheItem)
	if c.expired(item) {
		c.remove(el)
		return nil, domain.ErrCacheMiss
	}

	value := item.value
	return &value, nil
}

// Set stores a profile, evicting the oldest insertion when over capacity
func (c *MemoryCache) Set(ctx context.Context, key string, value domain.NutrientProfile) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, exists := c.data[key]; exists {
		item := el.Value.(*cacheItem)
		item.value = value
		item.storedAt = c.now()
		return nil
	}

	c.data[key] = c.order.PushBack(&cacheItem{key: key, value: value, storedAt: c.now()})

	for c.order.Len() > c.maxEntries {
		c.remove(c.order.Front())
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, exists := c.data[key]; exists {
		c.remove(el)
	}
	return nil
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *MemoryCache) purgeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if c.expired(el.Value.(*cacheItem)) {
			c.remove(el)
		}
		el = next
	}
}

func (c *MemoryCache) expired(item *cacheItem) bool {
	return c.now().Sub(item.storedAt) > c.ttl
}

// remove must be called with the mutex held
func (c *MemoryCache) remove(el *list.Element) {
	item := c.order.Remove(el).(*cacheItem)
	delete(c.data, item.key)
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.order.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]*list.Element)
	c.order.Init()
}
