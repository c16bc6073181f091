// Package health tracks whether the parts of the registry viewer can serve users:
// mainly whether the data source produced records on its last load.
//
// # Status
//
// A Status has one of three states:
//
//   - healthy: the component works
//   - degraded: the component works with reduced results, for example no data source is configured
//   - unhealthy: the component cannot do its job
//
// NewHealthy, NewDegraded and NewUnhealthy build statuses. Messages derived from
// errors should pass through SanitizeMessage first, which strips URLs, IP addresses and
// credentials: the status is served on an unauthenticated endpoint.
//
// # Monitor
//
// Monitor stores the latest status per component. OnChange registers a callback that
// runs on every update; the binary uses it to keep a health gauge current.
// AggregateHealth folds all components into one status, taking the worst state:
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("source", "4 records loaded")
//	overall := monitor.AggregateHealth("registry")
package health
