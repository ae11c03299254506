package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/platewise/backend/internal/domain"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration, max int) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewMemoryCache(ttl, max)
	cache.now = clock.Now
	t.Cleanup(func() { cache.Close() })
	return cache, clock
}

func profile(calories int) domain.NutrientProfile {
	return domain.NutrientProfile{Calories: calories, Protein: 10}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 10)
	ctx := context.Background()

	if err := cache.Set(ctx, "meal:a", profile(500)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "meal:a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Calories != 500 || got.Protein != 10 {
		t.Errorf("Get() = %+v", got)
	}
}

func TestMemoryCache_ReturnsCopy(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 10)
	ctx := context.Background()

	cache.Set(ctx, "k", profile(500))
	got, _ := cache.Get(ctx, "k")
	got.Calories = 1

	again, _ := cache.Get(ctx, "k")
	if again.Calories != 500 {
		t.Errorf("cached value was mutated through returned pointer: %d", again.Calories)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 10)

	_, err := cache.Get(context.Background(), "missing")
	if err != domain.ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache, clock := newTestCache(t, 12*time.Hour, 10)
	ctx := context.Background()

	cache.Set(ctx, "k", profile(300))

	clock.Advance(12 * time.Hour)
	if _, err := cache.Get(ctx, "k"); err != nil {
		t.Errorf("entry at exactly TTL should still be served, got %v", err)
	}

	clock.Advance(time.Millisecond)
	if _, err := cache.Get(ctx, "k"); err != domain.ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after TTL, got %v", err)
	}
	if cache.Size() != 0 {
		t.Errorf("expired entry should be dropped on read, size = %d", cache.Size())
	}
}

func TestMemoryCache_EvictsOldestInsertion(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		cache.Set(ctx, fmt.Sprintf("k%d", i), profile(i))
	}
	// reads do not refresh position
	cache.Get(ctx, "k1")

	cache.Set(ctx, "k4", profile(4))

	if cache.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", cache.Size())
	}
	if _, err := cache.Get(ctx, "k1"); err != domain.ErrCacheMiss {
		t.Errorf("k1 should have been evicted, got %v", err)
	}
	for _, k := range []string{"k2", "k3", "k4"} {
		if _, err := cache.Get(ctx, k); err != nil {
			t.Errorf("%s should be present, got %v", k, err)
		}
	}
}

func TestMemoryCache_OverwriteKeepsPosition(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 2)
	ctx := context.Background()

	cache.Set(ctx, "a", profile(1))
	cache.Set(ctx, "b", profile(2))
	cache.Set(ctx, "a", profile(10))
	cache.Set(ctx, "c", profile(3))

	if _, err := cache.Get(ctx, "a"); err != domain.ErrCacheMiss {
		t.Errorf("overwritten key keeps its insertion slot and should be evicted first, got %v", err)
	}
	if _, err := cache.Get(ctx, "b"); err != nil {
		t.Errorf("b should be present, got %v", err)
	}
}

func TestMemoryCache_OverwriteRefreshesTimestamp(t *testing.T) {
	cache, clock := newTestCache(t, time.Hour, 10)
	ctx := context.Background()

	cache.Set(ctx, "k", profile(1))
	clock.Advance(50 * time.Minute)
	cache.Set(ctx, "k", profile(2))
	clock.Advance(50 * time.Minute)

	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Calories != 2 {
		t.Errorf("Calories = %d, want 2", got.Calories)
	}
}

func TestMemoryCache_PurgeExpired(t *testing.T) {
	cache, clock := newTestCache(t, time.Hour, 10)
	ctx := context.Background()

	cache.Set(ctx, "old", profile(1))
	clock.Advance(45 * time.Minute)
	cache.Set(ctx, "new", profile(2))
	clock.Advance(30 * time.Minute)

	cache.purgeExpired()

	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 10)
	ctx := context.Background()

	cache.Set(ctx, "k", profile(1))
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err != domain.ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after Delete, got %v", err)
	}
	if err := cache.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete() of unknown key error = %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 10)
	ctx := context.Background()

	cache.Set(ctx, "a", profile(1))
	cache.Set(ctx, "b", profile(2))
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", cache.Size())
	}
}

func TestMemoryCache_Defaults(t *testing.T) {
	cache := NewMemoryCache(0, 0)
	defer cache.Close()

	if cache.ttl != DefaultTTL || cache.maxEntries != DefaultMaxEntries {
		t.Errorf("defaults = (%v, %d)", cache.ttl, cache.maxEntries)
	}
	// Close is idempotent
	cache.Close()
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*100+j)%80)
				cache.Set(ctx, key, profile(j))
				cache.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() > 50 {
		t.Errorf("Size() = %d exceeds bound", cache.Size())
	}
}
