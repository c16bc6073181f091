package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "registry"

// Metrics contains the application-level metrics of the registry viewer
type Metrics struct {
	// Data source
	SourceLoads        *prometheus.CounterVec
	SourceLoadDuration prometheus.Histogram
	RecordsLoaded      prometheus.Gauge
	SchemaGap          *prometheus.GaugeVec

	// Filtering
	FilterRequests prometheus.Counter
	FilterResults  prometheus.Histogram

	// Access
	LoginAttempts *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HealthStatus  *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all application metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SourceLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "loads_total",
				Help:      "Data source fetches by result (ok, empty, failed, skipped)",
			},
			[]string{"result"},
		),

		SourceLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "load_duration_seconds",
				Help:      "Time spent fetching and parsing the data source",
				Buckets:   prometheus.DefBuckets,
			},
		),

		RecordsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "records",
				Help:      "Number of records in the most recently loaded dataset",
			},
		),

		SchemaGap: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "schema",
				Name:      "gap",
				Help:      "1 when a semantic field had no matching column and was synthesized",
			},
			[]string{"field"},
		),

		FilterRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "filter",
				Name:      "requests_total",
				Help:      "Total number of filter evaluations",
			},
		),

		FilterResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "filter",
				Name:      "results",
				Help:      "Number of records returned per filter evaluation",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),

		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by result (ok, failed, unconfigured)",
			},
			[]string{"result"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"component"},
		),
	}
}

// RecordSourceLoad counts a data source load and its duration
func (c *Metrics) RecordSourceLoad(result string, duration time.Duration) {
	c.SourceLoads.WithLabelValues(result).Inc()
	if duration > 0 {
		c.SourceLoadDuration.Observe(duration.Seconds())
	}
}

// RecordRecordsLoaded sets the size of the current dataset
func (c *Metrics) RecordRecordsLoaded(n int) {
	c.RecordsLoaded.Set(float64(n))
}

// RecordSchemaGap marks whether a field had to be synthesized
func (c *Metrics) RecordSchemaGap(field string, gap bool) {
	value := 0.0
	if gap {
		value = 1.0
	}
	c.SchemaGap.WithLabelValues(field).Set(value)
}

// RecordFilter counts a filter evaluation and its result size
func (c *Metrics) RecordFilter(results int) {
	c.FilterRequests.Inc()
	c.FilterResults.Observe(float64(results))
}

// RecordLogin counts a login attempt
func (c *Metrics) RecordLogin(result string) {
	c.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts a served request
func (c *Metrics) RecordHTTPRequest(route, code string) {
	c.HTTPRequests.WithLabelValues(route, code).Inc()
}

// RecordHealthStatus updates the health gauge for a component
func (c *Metrics) RecordHealthStatus(component string, level int) {
	c.HealthStatus.WithLabelValues(component).Set(float64(level))
}
