// Package metric owns the Prometheus registry of the registry viewer.
//
// # Overview
//
// NewMetricsRegistry creates a private prometheus.Registry with the Go and process
// collectors and the application metrics in Metrics, all in the "registry" namespace:
//
//   - source: loads by result, load duration, records in the last table
//   - schema: which fields could not be mapped to a column
//   - filter: filter requests and result sizes
//   - auth: login attempts by result
//   - http: requests by route and status code
//   - health: current level per component
//
// Handler serves the registry in the Prometheus text format.
//
// # Nil Safety
//
// A nil *MetricsRegistry is valid. CoreMetrics then returns nil and callers skip
// recording, so metrics stay optional in every constructor.
//
// # Component Metrics
//
// Components register their own collectors under a component name. Registering the
// same component and metric twice fails; Unregister removes a collector again:
//
//	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "tables_cache_hits_total"})
//	if err := registry.RegisterCounter("tables", "hits", hits); err != nil {
//	    return err
//	}
package metric
