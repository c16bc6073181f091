package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/metric"
	"github.com/minstroy46-sys/kursk-registry-sub000/testutil"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newManualTTL(t *testing.T, ttl time.Duration, opts ...Option[string]) (Cache[string], *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(epoch)
	opts = append(opts, WithClock[string](clock))

	c, err := NewTTL[string](context.Background(), ttl, 0, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestNewTTL_InvalidTTL(t *testing.T) {
	_, err := NewTTL[string](context.Background(), 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestTTLCache_BasicOperations(t *testing.T) {
	c, _ := newManualTTL(t, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	isNew, err := c.Set("a", "1")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = c.Set("a", "2")
	require.NoError(t, err)
	assert.False(t, isNew)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	deleted, err := c.Delete("a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete("a")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = c.Set("", "x")
	assert.True(t, errors.IsInvalid(err))
	_, err = c.Delete("")
	assert.True(t, errors.IsInvalid(err))
}

func TestTTLCache_ExpiryIsWallClockBased(t *testing.T) {
	c, clock := newManualTTL(t, 300*time.Second)

	_, err := c.Set("src", "table")
	require.NoError(t, err)

	// Reads inside the window do not extend the lifetime
	for i := 0; i < 5; i++ {
		clock.Advance(59 * time.Second)
		v, ok := c.Get("src")
		require.True(t, ok, "read %d should hit", i)
		assert.Equal(t, "table", v)
	}

	clock.Advance(5 * time.Second) // 300s since Set
	_, ok := c.Get("src")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size(), "expired entry is dropped lazily on Get")
	assert.Equal(t, int64(1), c.Stats().Evictions())
}

func TestTTLCache_SetRefreshesExpiry(t *testing.T) {
	c, clock := newManualTTL(t, 10*time.Second)

	_, _ = c.Set("k", "old")
	clock.Advance(8 * time.Second)
	_, _ = c.Set("k", "new")
	clock.Advance(8 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestTTLCache_RemoveExpired(t *testing.T) {
	var evicted []string
	var mu sync.Mutex

	c, clock := newManualTTL(t, 10*time.Second, WithEvictionCallback[string](func(key, _ string) {
		mu.Lock()
		evicted = append(evicted, key)
		mu.Unlock()
	}))

	_, _ = c.Set("a", "1")
	_, _ = c.Set("b", "2")
	clock.Advance(11 * time.Second)
	_, _ = c.Set("c", "3")

	removed := c.(*ttlCache[string]).removeExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Size())

	mu.Lock()
	sort.Strings(evicted)
	assert.Equal(t, []string{"a", "b"}, evicted)
	mu.Unlock()
}

func TestTTLCache_Statistics(t *testing.T) {
	c, _ := newManualTTL(t, time.Minute)

	_, _ = c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("b")
	_, _ = c.Delete("a")

	s := c.Stats().Summary()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Sets)
	assert.Equal(t, int64(1), s.Deletes)
	assert.Equal(t, int64(0), s.CurrentSize)
	assert.Equal(t, int64(1), s.MaxSize)
	assert.InDelta(t, 2.0/3.0, s.HitRatio, 0.0001)
}

func TestTTLCache_JanitorStopsOnClose(t *testing.T) {
	c, err := NewTTL[string](context.Background(), 5*time.Millisecond, time.Millisecond)
	require.NoError(t, err)

	_, _ = c.Set("a", "1")
	require.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 2*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestTTLCache_JanitorStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := NewTTL[string](ctx, time.Minute, time.Millisecond)
	require.NoError(t, err)

	cancel()
	assert.NoError(t, c.Close())
}

func TestTTLCache_ConcurrentReadersAndRefresh(t *testing.T) {
	c, _ := newManualTTL(t, time.Minute)
	_, _ = c.Set("src", "v0")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				v, ok := c.Get("src")
				assert.True(t, ok)
				assert.NotEmpty(t, v)
			}
		}()
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, _ = c.Set("src", fmt.Sprintf("v%d-%d", i, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, c.Size())
}

func TestTTLCache_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	c, _ := newManualTTL(t, time.Minute, WithMetrics[string](registry, "dataset"))

	_, _ = c.Set("a", "1")
	c.Get("a")
	c.Get("missing")

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	require.Contains(t, byName, "registry_cache_hits_total")
	assert.Equal(t, 1.0, byName["registry_cache_hits_total"].Metric[0].GetCounter().GetValue())
	require.Contains(t, byName, "registry_cache_misses_total")
	assert.Equal(t, 1.0, byName["registry_cache_misses_total"].Metric[0].GetCounter().GetValue())
	require.Contains(t, byName, "registry_cache_size")
	assert.Equal(t, 1.0, byName["registry_cache_size"].Metric[0].GetGauge().GetValue())

	// Same prefix twice is a registration conflict
	_, err = NewTTL[string](context.Background(), time.Minute, 0, WithMetrics[string](registry, "dataset"))
	assert.Error(t, err)
}
