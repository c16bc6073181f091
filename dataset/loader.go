package dataset

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/health"
	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
	"github.com/minstroy46-sys/kursk-registry-sub000/pkg/cache"
)

// HealthComponent is the name under which the loader reports source health.
const HealthComponent = "source"

// Load results used as the metrics label.
const (
	ResultOK      = "ok"
	ResultEmpty   = "empty"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
	ResultTimeout = "timeout"
)

// Loader fetches, parses and caches source tables. Tables are cached per source for a
// fixed TTL; failed loads are not cached so the next request tries again.
type Loader struct {
	fetcher     Fetcher
	cache       cache.Cache[*Table]
	group       singleflight.Group
	waitTimeout time.Duration
	logger      *slog.Logger
	metrics     *metric.Metrics
	monitor     *health.Monitor

	// generations counts invalidations per source; a fetch started before the
	// latest Invalidate does not populate the cache.
	genMu       sync.Mutex
	generations map[string]uint64
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	logger          *slog.Logger
	registry        *metric.MetricsRegistry
	monitor         *health.Monitor
	clock           cache.Clock
	cleanupInterval time.Duration
	cleanupSet      bool
	waitTimeout     time.Duration
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records load counters on registry and exports the table cache statistics.
func WithMetrics(registry *metric.MetricsRegistry) LoaderOption {
	return func(o *loaderOptions) {
		o.registry = registry
	}
}

// WithHealthMonitor reports source health to monitor.
func WithHealthMonitor(monitor *health.Monitor) LoaderOption {
	return func(o *loaderOptions) {
		o.monitor = monitor
	}
}

// WithClock replaces the clock that drives cache expiry.
func WithClock(clock cache.Clock) LoaderOption {
	return func(o *loaderOptions) {
		o.clock = clock
	}
}

// WithCleanupInterval sets how often expired tables are collected. Zero disables the
// janitor; expired tables are then dropped on the next Load. Defaults to the TTL.
func WithCleanupInterval(d time.Duration) LoaderOption {
	return func(o *loaderOptions) {
		if d >= 0 {
			o.cleanupInterval = d
			o.cleanupSet = true
		}
	}
}

// WithWaitTimeout bounds how long Load waits for a fetch. When it elapses Load
// returns an empty table while the shared fetch keeps running and fills the cache
// for later callers. Zero waits as long as the caller's context allows.
func WithWaitTimeout(d time.Duration) LoaderOption {
	return func(o *loaderOptions) {
		if d >= 0 {
			o.waitTimeout = d
		}
	}
}

// NewLoader creates a loader caching tables for ttl. The cache janitor, if any, runs
// until ctx is done or Close is called.
func NewLoader(ctx context.Context, fetcher Fetcher, ttl time.Duration, opts ...LoaderOption) (*Loader, error) {
	if fetcher == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Loader", "NewLoader", "fetcher check")
	}

	o := &loaderOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "dataset")
	}
	if !o.cleanupSet {
		o.cleanupInterval = ttl
	}

	cacheOpts := []cache.Option[*Table]{
		cache.WithMetrics[*Table](o.registry, "dataset"),
	}
	if o.clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock[*Table](o.clock))
	}

	tables, err := cache.NewTTL[*Table](ctx, ttl, o.cleanupInterval, cacheOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Loader", "NewLoader", "table cache creation")
	}

	return &Loader{
		fetcher:     fetcher,
		cache:       tables,
		waitTimeout: o.waitTimeout,
		logger:      o.logger,
		metrics:     o.registry.CoreMetrics(),
		monitor:     o.monitor,
		generations: make(map[string]uint64),
	}, nil
}

// Load returns the table for source. It never fails: a blank source, an unreachable
// source or an unparsable body all yield an empty table. Concurrent misses for the
// same source share one fetch. The returned table is shared and must not be modified.
func (l *Loader) Load(ctx context.Context, source string) *Table {
	source = strings.TrimSpace(source)
	if source == "" {
		l.recordResult(ResultSkipped, 0)
		l.report(health.NewDegraded(HealthComponent, "data source is not configured"))
		return Empty()
	}

	if t, ok := l.cache.Get(source); ok {
		return t
	}

	// The shared fetch outlives any single caller's cancellation or wait budget.
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(source, func() (any, error) {
		if t, ok := l.cache.Get(source); ok {
			return t, nil
		}
		return l.fetch(fetchCtx, source, l.generation(source))
	})

	var expired <-chan time.Time
	if l.waitTimeout > 0 {
		timer := time.NewTimer(l.waitTimeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-ctx.Done():
		l.logger.Debug("Load abandoned by caller", "host", sourceHost(source), "error", ctx.Err())
		return Empty()
	case <-expired:
		l.recordResult(ResultTimeout, l.waitTimeout)
		l.logger.Warn("Data source did not answer in time; serving no records",
			"host", sourceHost(source),
			"wait_timeout", l.waitTimeout)
		return Empty()
	case res := <-ch:
		if res.Err != nil {
			return Empty()
		}
		return res.Val.(*Table)
	}
}

// Invalidate drops the cached table for source so the next Load fetches again.
func (l *Loader) Invalidate(source string) {
	source = strings.TrimSpace(source)
	if source == "" {
		return
	}
	l.genMu.Lock()
	l.generations[source]++
	deleted, _ := l.cache.Delete(source)
	l.genMu.Unlock()

	l.group.Forget(source)
	if deleted {
		l.logger.Info("Cached table invalidated", "host", sourceHost(source))
	}
}

func (l *Loader) generation(source string) uint64 {
	l.genMu.Lock()
	defer l.genMu.Unlock()
	return l.generations[source]
}

// store caches table unless source was invalidated after the fetch began.
func (l *Loader) store(source string, gen uint64, table *Table) {
	l.genMu.Lock()
	defer l.genMu.Unlock()

	if l.generations[source] != gen {
		l.logger.Debug("Discarding table fetched before invalidation", "host", sourceHost(source))
		return
	}
	if _, err := l.cache.Set(source, table); err != nil {
		l.logger.Warn("Failed to cache table", "host", sourceHost(source), "error", err)
	}
}

// CacheStats returns a snapshot of the table cache counters.
func (l *Loader) CacheStats() cache.StatsSummary {
	return l.cache.Stats().Summary()
}

// Close stops the cache janitor.
func (l *Loader) Close() error {
	return l.cache.Close()
}

func (l *Loader) fetch(ctx context.Context, source string, gen uint64) (*Table, error) {
	start := time.Now()
	host := sourceHost(source)

	body, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, l.fail(host, start, errors.Wrap(err, "Loader", "Load", "fetch"))
	}

	table, err := Parse(body)
	if err != nil {
		return nil, l.fail(host, start, err)
	}

	l.store(source, gen, table)

	elapsed := time.Since(start)
	if l.metrics != nil {
		l.metrics.RecordRecordsLoaded(table.Len())
	}
	if table.IsEmpty() {
		l.recordResult(ResultEmpty, elapsed)
		l.report(health.NewDegraded(HealthComponent, "data source returned no records"))
		l.logger.Warn("Data source returned no records", "host", host, "columns", len(table.Columns()))
		return table, nil
	}

	l.recordResult(ResultOK, elapsed)
	l.report(health.NewHealthy(HealthComponent, strconv.Itoa(table.Len())+" records loaded"))
	l.logger.Info("Data source loaded",
		"host", host,
		"rows", table.Len(),
		"columns", len(table.Columns()),
		"duration", elapsed,
		"cache_hit_ratio", l.cache.Stats().HitRatio())
	return table, nil
}

func (l *Loader) fail(host string, start time.Time, err error) error {
	msg := health.SanitizeMessage(err.Error())
	l.recordResult(ResultFailed, time.Since(start))
	l.report(health.NewUnhealthy(HealthComponent, msg))
	l.logger.Warn("Data source unavailable",
		"host", host,
		"class", errors.Classify(err).String(),
		"error", msg)
	return err
}

func (l *Loader) recordResult(result string, d time.Duration) {
	if l.metrics != nil {
		l.metrics.RecordSourceLoad(result, d)
	}
}

func (l *Loader) report(status health.Status) {
	if l.monitor != nil {
		l.monitor.Update(HealthComponent, status)
	}
}

// sourceHost keeps source URLs, which may embed access keys, out of logs.
func sourceHost(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return "invalid-url"
	}
	return u.Host
}
