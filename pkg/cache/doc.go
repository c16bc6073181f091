// Package cache provides a generic, thread-safe TTL cache with always-on statistics,
// optional Prometheus metrics and an injectable clock.
//
// # Overview
//
// Entries expire a fixed time after they were set; reads never extend the lifetime.
// Values are handed out as-is, so callers that share a cached value must treat it as
// immutable and replace it with Set instead of mutating it.
//
// The registry viewer keeps two caches: parsed tables keyed by data source URL, and
// login sessions keyed by session ID.
//
// # Expiry
//
// An expired entry is dropped lazily by the Get that finds it. When NewTTL is given a
// positive cleanup interval, a janitor goroutine also sweeps expired entries until the
// context is done or Close is called:
//
//	tables, err := cache.NewTTL[*Table](ctx, 5*time.Minute, time.Minute)
//	if err != nil {
//	    return err
//	}
//	defer tables.Close()
//
// # Options
//
//   - WithClock: replace the wall clock, typically with a manual clock in tests
//   - WithMetrics: export hits, misses, sets, deletes, evictions and size to Prometheus
//   - WithEvictionCallback: observe entries leaving the cache through Delete or expiry
//
// The eviction callback runs outside the cache lock, so it may call back into the cache.
//
// # Statistics
//
// Stats returns counters that are kept whether or not metrics are enabled. Summary
// takes a point-in-time snapshot:
//
//	s := c.Stats().Summary()
//	logger.Info("Cache state", "hit_ratio", s.HitRatio, "size", s.CurrentSize)
//
// # Thread Safety
//
// All methods are safe for concurrent use. Set replaces an entry in one step, so a
// concurrent Get sees either the old value or the new one.
package cache
