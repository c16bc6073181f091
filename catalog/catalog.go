// Package catalog serves the current mapped dataset for the configured source.
//
// It sits between the loader, which caches raw tables, and the request handlers,
// which need a schema.Dataset. The mapping is computed once per loaded table and
// reused until the loader hands out a different table.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/minstroy46-sys/kursk-registry-sub000/dataset"
	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
	"github.com/minstroy46-sys/kursk-registry-sub000/schema"
)

// Loader is the part of dataset.Loader the catalog uses.
type Loader interface {
	Load(ctx context.Context, source string) *dataset.Table
	Invalidate(source string)
}

type snapshot struct {
	table *dataset.Table
	ds    *schema.Dataset
}

// Catalog maps tables from a single source.
type Catalog struct {
	loader  Loader
	source  string
	logger  *slog.Logger
	metrics *metric.Metrics
	current atomic.Pointer[snapshot]
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records schema gaps on registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(c *Catalog) {
		c.metrics = registry.CoreMetrics()
	}
}

// New creates a catalog for source. An empty source is allowed; every snapshot is
// then empty.
func New(loader Loader, source string, opts ...Option) *Catalog {
	c := &Catalog{
		loader: loader,
		source: strings.TrimSpace(source),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "catalog")
	}
	return c
}

// Configured reports whether a source location is set.
func (c *Catalog) Configured() bool {
	return c.source != ""
}

// Snapshot returns the mapped dataset for the current table of the source.
func (c *Catalog) Snapshot(ctx context.Context) *schema.Dataset {
	table := c.loader.Load(ctx, c.source)

	if cur := c.current.Load(); cur != nil && cur.table == table {
		return cur.ds
	}

	ds := schema.NewDataset(table)
	c.recordMapping(table, ds.Mapping())

	// Empty results are not memoized; each failed load hands out a new empty table.
	if !table.IsEmpty() {
		c.current.Store(&snapshot{table: table, ds: ds})
	}
	return ds
}

// Refresh drops the cached table and loads the source again.
func (c *Catalog) Refresh(ctx context.Context) *schema.Dataset {
	c.loader.Invalidate(c.source)
	return c.Snapshot(ctx)
}

// Run loads the source every interval so that readers rarely wait on a fetch.
// It returns when ctx is done. A non-positive interval only performs the first load.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) error {
	if !c.Configured() {
		c.logger.Warn("Data source is not configured; warm-up disabled")
		return nil
	}

	c.Snapshot(ctx)
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ds := c.Snapshot(ctx)
			c.logger.Debug("Warm-up load finished", "records", ds.Len())
		}
	}
}

func (c *Catalog) recordMapping(table *dataset.Table, mapping schema.Mapping) {
	if table.IsEmpty() && len(table.Columns()) == 0 {
		return
	}

	gaps := mapping.Gaps()
	if len(gaps) > 0 {
		names := make([]string, len(gaps))
		for i, f := range gaps {
			names[i] = f.String()
		}
		c.logger.Debug("Fields without a matching column", "fields", names)
	}

	if c.metrics == nil {
		return
	}
	for _, f := range schema.Fields() {
		c.metrics.RecordSchemaGap(f.String(), mapping.Synthesized(f))
	}
}
