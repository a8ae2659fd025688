package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("nfetch")
	if tc.ServiceName != "nfetch" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults: %+v", tc)
	}
	mc := DefaultMeterConfig("nfetch")
	if mc.ServiceName != "nfetch" || mc.Interval != 15*time.Second {
		t.Errorf("unexpected meter defaults: %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("expected ratio sampler, got %q", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("nfetch", "1.2.3", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["service.name"] != "nfetch" {
		t.Errorf("expected service.name nfetch, got %q", found["service.name"])
	}
	if found["service.version"] != "1.2.3" {
		t.Errorf("expected service.version 1.2.3, got %q", found["service.version"])
	}
}

func TestStartSpanAndAttributes(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanHTTPClient)
	SetSpanAttribute(ctx, AttrHTTPMethod, "GET")
	SetSpanAttribute(ctx, AttrStatusCode, 200)
	SetSpanAttribute(ctx, "flag", true)
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	got := ended[0]
	if got.Name() != SpanHTTPClient {
		t.Errorf("expected span name %q, got %q", SpanHTTPClient, got.Name())
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrHTTPMethod].AsString() != "GET" {
		t.Errorf("missing method attribute: %v", attrs)
	}
	if attrs[AttrStatusCode].AsInt64() != 200 {
		t.Errorf("missing status attribute: %v", attrs)
	}
	if _, ok := attrs["ignored"]; ok {
		t.Error("unsupported attribute type should be ignored")
	}
}

func TestSetSpanError(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "op")
	SetSpanError(ctx, errors.New("boom"))
	SetSpanError(ctx, nil)
	span.End()

	got := rec.Ended()[0]
	if got.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status())
	}
	if len(got.Events()) != 1 {
		t.Errorf("expected 1 error event, got %d", len(got.Events()))
	}
}

func TestSpanHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, errors.New("boom"))
	if SpanFromContext(ctx).IsRecording() {
		t.Error("background context should carry no recording span")
	}
}

func TestInjectHeaders(t *testing.T) {
	installRecorder(t)
	prev := otel.GetTextMapPropagator()
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()

	carrier := map[string]string{}
	InjectHeaders(ctx, carrier)
	if carrier["traceparent"] == "" {
		t.Errorf("expected traceparent header, got %v", carrier)
	}
}

func TestClientMetricsNoop(t *testing.T) {
	m, err := NewClientMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewClientMetrics: %v", err)
	}
	ctx := context.Background()
	m.RequestStarted(ctx, "GET", "example.com")
	m.RequestFinished(ctx, "GET", "example.com", 200, time.Millisecond)
	m.RecordError(ctx, "GET", "example.com", "network")
}

func TestClientMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewClientMetrics: %v", err)
	}
	ctx := context.Background()
	m.RequestStarted(ctx, "POST", "example.com")
	m.RequestFinished(ctx, "POST", "example.com", 503, 20*time.Millisecond)
	m.RecordError(ctx, "POST", "example.com", "server")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
			if md.Name == MetricRequests {
				sum, ok := md.Data.(metricdata.Sum[int64])
				if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
					t.Errorf("unexpected %s data: %+v", MetricRequests, md.Data)
					continue
				}
				status, _ := sum.DataPoints[0].Attributes.Value(AttrStatusCode)
				if status.AsString() != "503" {
					t.Errorf("expected status 503, got %q", status.AsString())
				}
			}
		}
	}
	for _, want := range []string{MetricRequests, MetricRequestDuration, MetricActiveRequests, MetricErrors} {
		if !names[want] {
			t.Errorf("metric %s not recorded", want)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if statusLabel(0) != "none" || statusLabel(404) != "404" {
		t.Errorf("unexpected labels %q %q", statusLabel(0), statusLabel(404))
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "nfetch", "dev")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	shutdown, err := Setup(context.Background(), Config{
		Enabled:  true,
		Endpoint: "127.0.0.1:1",
		Insecure: true,
		Interval: time.Hour,
	}, "nfetch", "test")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// Nothing is listening; only check that shutdown returns.
	_ = shutdown(ctx)
}
