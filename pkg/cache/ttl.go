package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
)

type ttlEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

func (e *ttlEntry[V]) expiredAt(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// ttlCache evicts entries a fixed duration after they were set.
type ttlCache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	items   map[string]*ttlEntry[V]
	clock   Clock
	stats   *Statistics
	metrics *cacheMetrics
	evictFn EvictCallback[V]

	closeOnce sync.Once
	shutdown  chan struct{}
	done      chan struct{}
}

// NewTTL creates a TTL cache. When cleanupInterval is positive a janitor goroutine
// removes expired entries on that interval until ctx is done or Close is called;
// otherwise expired entries are only dropped lazily on Get.
func NewTTL[V any](
	ctx context.Context, ttl, cleanupInterval time.Duration, options ...Option[V],
) (Cache[V], error) {
	if ttl <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "NewTTL",
			fmt.Sprintf("ttl must be positive, got %s", ttl))
	}

	opts := applyOptions(options...)

	var metrics *cacheMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewTTL", "metrics registration")
		}
	}

	c := &ttlCache[V]{
		ttl:      ttl,
		items:    make(map[string]*ttlEntry[V]),
		clock:    opts.clock,
		stats:    NewStatistics(),
		metrics:  metrics,
		evictFn:  opts.evictCallback,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.cleanup(ctx, cleanupInterval)
	} else {
		close(c.done)
	}

	return c, nil
}

// Get returns the value for key when it exists and has not expired.
func (c *ttlCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.items[key]
	c.mu.RUnlock()

	if exists && !entry.expiredAt(c.clock.Now()) {
		c.stats.Hit()
		c.metrics.recordHit()
		return entry.value, true
	}

	if exists {
		c.mu.Lock()
		// Another goroutine may have refreshed the entry in the meantime
		current, stillExists := c.items[key]
		evicted := stillExists && current.expiredAt(c.clock.Now())
		if evicted {
			delete(c.items, key)
		}
		size := len(c.items)
		c.mu.Unlock()

		if evicted {
			c.stats.Eviction(1)
			c.stats.UpdateSize(int64(size))
			c.metrics.recordEvictions(1, size)
			if c.evictFn != nil {
				c.evictFn(key, current.value)
			}
		}
	}

	c.stats.Miss()
	c.metrics.recordMiss()
	var zero V
	return zero, false
}

// Set stores value under key, replacing any previous entry in one step.
func (c *ttlCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	_, exists := c.items[key]
	c.items[key] = &ttlEntry[V]{
		key:       key,
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	c.metrics.recordSet(size)

	return !exists, nil
}

// Delete removes an entry by key.
func (c *ttlCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	entry, exists := c.items[key]
	if exists {
		delete(c.items, key)
	}
	size := len(c.items)
	c.mu.Unlock()

	if !exists {
		return false, nil
	}

	c.stats.Delete()
	c.stats.UpdateSize(int64(size))
	c.metrics.recordDelete(size)
	if c.evictFn != nil {
		c.evictFn(key, entry.value)
	}
	return true, nil
}

// Size returns the current number of entries in the cache.
func (c *ttlCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns the cache statistics.
func (c *ttlCache[V]) Stats() *Statistics {
	return c.stats
}

// Close stops the janitor goroutine. It is safe to call more than once.
func (c *ttlCache[V]) Close() error {
	c.closeOnce.Do(func() { close(c.shutdown) })

	select {
	case <-c.done:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for cache cleanup goroutine to finish")
	}
}

func (c *ttlCache[V]) cleanup(ctx context.Context, interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

// removeExpired drops every expired entry and reports how many were removed.
func (c *ttlCache[V]) removeExpired() int {
	now := c.clock.Now()
	var expired []*ttlEntry[V]

	c.mu.Lock()
	for key, entry := range c.items {
		if entry.expiredAt(now) {
			expired = append(expired, entry)
			delete(c.items, key)
		}
	}
	size := len(c.items)
	c.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}

	if c.evictFn != nil {
		for _, entry := range expired {
			c.evictFn(entry.key, entry.value)
		}
	}

	c.stats.Eviction(len(expired))
	c.stats.UpdateSize(int64(size))
	c.metrics.recordEvictions(len(expired), size)
	return len(expired)
}
