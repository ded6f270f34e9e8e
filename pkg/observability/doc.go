/*
Package observability turns tool-loop lifecycle events into logs and Prometheus metrics.

Both helpers return domain.LifecycleHooks, so they compose with Merge:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := observability.LogHooks(logger).Merge(metrics.Hooks())
*/
package observability
