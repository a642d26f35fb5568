/*
Package observability turns mission lifecycle hooks into telemetry.

Metrics exposes Prometheus collectors registered on a caller-supplied
registry, and LogHooks writes every lifecycle event to a structured logger.
Both return domain.LifecycleHooks, so they compose with domain.CombineHooks:

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := domain.CombineHooks(metrics.Hooks(), observability.LogHooks(logger))
*/
package observability
