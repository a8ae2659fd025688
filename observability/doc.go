// Package observability wires OpenTelemetry tracing and metrics for
// outgoing requests.
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry, "nfetch", version.Short())
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RequestStarted(ctx, "GET", "api.example.com")
//	metrics.RequestFinished(ctx, "GET", "api.example.com", 200, elapsed)
package observability
