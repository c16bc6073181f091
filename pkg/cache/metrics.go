package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
)

// cacheMetrics mirrors Statistics into Prometheus for one cache instance.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	deletes   prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

func cacheCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "registry",
		Subsystem:   "cache",
		Name:        name,
		ConstLabels: prometheus.Labels{"component": prefix},
		Help:        help,
	})
}

// newCacheMetrics creates and registers cache metrics labelled with prefix.
func newCacheMetrics(registry metric.MetricsRegistrar, prefix string) (*cacheMetrics, error) {
	m := &cacheMetrics{
		hits:      cacheCounter(prefix, "hits_total", "Total number of cache hits"),
		misses:    cacheCounter(prefix, "misses_total", "Total number of cache misses"),
		sets:      cacheCounter(prefix, "sets_total", "Total number of cache set operations"),
		deletes:   cacheCounter(prefix, "deletes_total", "Total number of cache delete operations"),
		evictions: cacheCounter(prefix, "evictions_total", "Total number of expired entries removed"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "registry",
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of entries in cache",
		}),
	}

	counters := []struct {
		name    string
		counter prometheus.Counter
	}{
		{"cache_hits", m.hits},
		{"cache_misses", m.misses},
		{"cache_sets", m.sets},
		{"cache_deletes", m.deletes},
		{"cache_evictions", m.evictions},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.counter); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGauge(prefix, "cache_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) recordSet(size int) {
	if m != nil {
		m.sets.Inc()
		m.size.Set(float64(size))
	}
}

func (m *cacheMetrics) recordDelete(size int) {
	if m != nil {
		m.deletes.Inc()
		m.size.Set(float64(size))
	}
}

func (m *cacheMetrics) recordEvictions(n, size int) {
	if m != nil {
		m.evictions.Add(float64(n))
		m.size.Set(float64(size))
	}
}

func (m *cacheMetrics) updateSize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
