package metric

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.Same(t, registry.Metrics, registry.CoreMetrics())
}

func TestCoreMetrics_NilRegistry(t *testing.T) {
	var registry *MetricsRegistry
	assert.Nil(t, registry.CoreMetrics())
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	require.NoError(t, registry.RegisterCounter("loader", "test_counter", counter))
	counter.Inc()

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "test_counter" {
			found = true
			break
		}
	}
	assert.True(t, found, "counter should be registered in the prometheus registry")
}

func TestMetricsRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dup_gauge", Help: "dup"})
	require.NoError(t, registry.RegisterGauge("cache", "size", gauge))

	err := registry.RegisterGauge("cache", "size", gauge)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	other := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dup_gauge", Help: "dup"})
	err = registry.RegisterGauge("cache", "size_again", other)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_hist", Help: "h"})
	require.NoError(t, registry.RegisterHistogram("loader", "hist", histogram))

	assert.True(t, registry.Unregister("loader", "hist"))
	assert.False(t, registry.Unregister("loader", "hist"))
	assert.NoError(t, registry.RegisterHistogram("loader", "hist", histogram))
}

func TestMetrics_Recorders(t *testing.T) {
	registry := NewMetricsRegistry()
	m := registry.CoreMetrics()

	m.RecordSourceLoad("ok", 120*time.Millisecond)
	m.RecordSourceLoad("failed", 0)
	m.RecordSourceLoad("ok", time.Second)
	m.RecordRecordsLoaded(42)
	m.RecordSchemaGap("card_url", true)
	m.RecordSchemaGap("name", false)
	m.RecordFilter(3)
	m.RecordLogin("failed")
	m.RecordHTTPRequest("/", "200")
	m.RecordHealthStatus("source", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SourceLoads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceLoads.WithLabelValues("failed")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.RecordsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaGap.WithLabelValues("card_url")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SchemaGap.WithLabelValues("name")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HealthStatus.WithLabelValues("source")))
}

func TestMetricsRegistry_Handler(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordRecordsLoaded(7)

	rec := httptest.NewRecorder()
	registry.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "registry_source_records 7")
}
