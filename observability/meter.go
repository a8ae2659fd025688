package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/netfoundation/logger"
)

// MeterConfig configures the OTLP meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a periodic OTLP meter provider as the global one.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names recorded by ClientMetrics.
const (
	MetricRequests        = "http.client.requests"
	MetricRequestDuration = "http.client.request.duration"
	MetricActiveRequests  = "http.client.active_requests"
	MetricErrors          = "http.client.errors"
)

// ClientMetrics holds the instruments for outgoing requests.
type ClientMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	errors   metric.Int64Counter
}

// NewClientMetrics creates the client instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Completed outgoing requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}

	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of outgoing requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	active, err := meter.Int64UpDownCounter(MetricActiveRequests,
		metric.WithDescription("Outgoing requests in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricActiveRequests, err)
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Failed outgoing requests by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	return &ClientMetrics{
		requests: requests,
		duration: duration,
		active:   active,
		errors:   errs,
	}, nil
}

// RequestStarted increments the in-flight gauge.
func (m *ClientMetrics) RequestStarted(ctx context.Context, method, host string) {
	m.active.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrServerAddress, host),
	))
}

// RequestFinished decrements the in-flight gauge and records the request.
// A zero status means no response was received.
func (m *ClientMetrics) RequestFinished(ctx context.Context, method, host string, status int, d time.Duration) {
	base := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrServerAddress, host),
	}
	m.active.Add(ctx, -1, metric.WithAttributes(base...))

	withStatus := append(base, attribute.String(AttrStatusCode, statusLabel(status)))
	m.requests.Add(ctx, 1, metric.WithAttributes(withStatus...))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(withStatus...))
}

// RecordError counts a failed request by error kind.
func (m *ClientMetrics) RecordError(ctx context.Context, method, host, kind string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrServerAddress, host),
		attribute.String(AttrErrorKind, kind),
	))
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
