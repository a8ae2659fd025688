package httpclient

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/netfoundation/logger"
	"github.com/kbukum/netfoundation/observability"
	"github.com/kbukum/netfoundation/resilience"
)

// Middleware decorates an Executor.
type Middleware func(Executor) Executor

// Chain wraps exec with mws. The first middleware is the outermost.
func Chain(exec Executor, mws ...Middleware) Executor {
	for i := len(mws) - 1; i >= 0; i-- {
		exec = mws[i](exec)
	}
	return exec
}

// aroundFunc runs code around one exchange; next performs it.
type aroundFunc func(ctx context.Context, req *TransportRequest, next func(context.Context, *TransportRequest) (*TransportResponse, error)) (*TransportResponse, error)

type aroundExecutor struct {
	next   Executor
	around aroundFunc
}

func around(next Executor, fn aroundFunc) Executor {
	return &aroundExecutor{next: next, around: fn}
}

func (a *aroundExecutor) Execute(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	return a.around(ctx, req, a.next.Execute)
}

func (a *aroundExecutor) Upload(ctx context.Context, req *TransportRequest, payload []byte) (*TransportResponse, error) {
	return a.around(ctx, req, func(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
		return a.next.Upload(ctx, req, payload)
	})
}

// WithLogging logs each exchange: Debug on success, Warn on 4xx and Error
// on 5xx or transport failure.
func WithLogging(log *logger.Logger) Middleware {
	log = log.WithComponent("httpclient")
	return func(next Executor) Executor {
		return around(next, func(ctx context.Context, req *TransportRequest, call func(context.Context, *TransportRequest) (*TransportResponse, error)) (*TransportResponse, error) {
			start := time.Now()
			resp, err := call(ctx, req)

			fields := logger.DurationFields("exchange", time.Since(start))
			fields[logger.FieldMethod] = string(req.Method)
			fields[logger.FieldURL] = redactedURL(req)
			l := log.WithContext(ctx)
			switch {
			case err != nil:
				l.Error("request failed", logger.MergeWithError(fields, err))
			case resp == nil:
				l.Error("request failed", logger.MergeWithError(fields, errNoResponse))
			case resp.StatusCode >= 500:
				fields[logger.FieldStatusCode] = resp.StatusCode
				l.Error("request completed with server error", fields)
			case resp.StatusCode >= 400:
				fields[logger.FieldStatusCode] = resp.StatusCode
				l.Warn("request completed with client error", fields)
			default:
				fields[logger.FieldStatusCode] = resp.StatusCode
				fields[logger.FieldBytes] = len(resp.Body)
				l.Debug("request completed", fields)
			}
			return resp, err
		})
	}
}

// WithTracing records a client span per exchange on the named tracer and
// propagates the trace context in request headers. An empty name uses the
// module's instrumentation name.
func WithTracing(name string) Middleware {
	if name == "" {
		name = observability.InstrumentationName
	}
	return func(next Executor) Executor {
		return around(next, func(ctx context.Context, req *TransportRequest, call func(context.Context, *TransportRequest) (*TransportResponse, error)) (*TransportResponse, error) {
			tracer := otel.Tracer(name)
			ctx, span := tracer.Start(ctx, "HTTP "+string(req.Method),
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String(observability.AttrHTTPMethod, string(req.Method)),
					attribute.String(observability.AttrURLFull, redactedURL(req)),
					attribute.String(observability.AttrServerAddress, hostOf(req)),
				),
			)
			defer span.End()

			carrier := make(map[string]string)
			observability.InjectHeaders(ctx, carrier)
			if len(carrier) > 0 {
				req = req.Clone()
				for k, v := range carrier {
					req.Header.Set(k, v)
				}
			}

			resp, err := call(ctx, req)
			if err == nil && resp == nil {
				span.SetStatus(codes.Error, errNoResponse.Error())
				return nil, nil
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}
			span.SetAttributes(
				attribute.Int(observability.AttrStatusCode, resp.StatusCode),
				attribute.Int(observability.AttrBodySize, len(resp.Body)),
			)
			if resp.StatusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
			}
			return resp, nil
		})
	}
}

// WithMetrics records request counts, durations and failures.
func WithMetrics(m *observability.ClientMetrics) Middleware {
	return func(next Executor) Executor {
		return around(next, func(ctx context.Context, req *TransportRequest, call func(context.Context, *TransportRequest) (*TransportResponse, error)) (*TransportResponse, error) {
			method, host := string(req.Method), hostOf(req)
			m.RequestStarted(ctx, method, host)
			start := time.Now()

			resp, err := call(ctx, req)

			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			m.RequestFinished(ctx, method, host, status, time.Since(start))
			switch {
			case err != nil, resp == nil:
				m.RecordError(ctx, method, host, KindNetwork.String())
			case status >= 500:
				m.RecordError(ctx, method, host, KindServer.String())
			case status >= 400:
				m.RecordError(ctx, method, host, KindClientData.String())
			}
			return resp, err
		})
	}
}

// WithCircuitBreaker rejects exchanges while cb is open. Transport failures,
// missing responses and 5xx responses count as failures.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Middleware {
	return func(next Executor) Executor {
		return around(next, func(ctx context.Context, req *TransportRequest, call func(context.Context, *TransportRequest) (*TransportResponse, error)) (*TransportResponse, error) {
			if err := cb.Allow(); err != nil {
				return nil, err
			}
			resp, err := call(ctx, req)
			cb.Record(err == nil && resp != nil && resp.StatusCode < 500)
			return resp, err
		})
	}
}

// WithRateLimiter waits for a token from rl before each exchange.
func WithRateLimiter(rl *resilience.RateLimiter) Middleware {
	return func(next Executor) Executor {
		return around(next, func(ctx context.Context, req *TransportRequest, call func(context.Context, *TransportRequest) (*TransportResponse, error)) (*TransportResponse, error) {
			if err := rl.Wait(ctx); err != nil {
				return nil, err
			}
			return call(ctx, req)
		})
	}
}

func hostOf(req *TransportRequest) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.Host
}
