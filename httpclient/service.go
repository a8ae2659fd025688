package httpclient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/netfoundation/param"
)

// Service assembles requests, executes them and decodes the responses.
// It holds no mutable state and is safe for concurrent use when its
// executor is.
type Service struct {
	exec     Executor
	settings Settings
	debug    DebugLogger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDebugLogger sets the logger that receives exchanges when
// Settings.Debug is on.
func WithDebugLogger(d DebugLogger) ServiceOption {
	return func(s *Service) { s.debug = d }
}

// WithMiddleware decorates the service's executor. The first middleware is
// the outermost.
func WithMiddleware(mws ...Middleware) ServiceOption {
	return func(s *Service) { s.exec = Chain(s.exec, mws...) }
}

// NewService creates a service over exec. Zero settings fields get defaults.
func NewService(exec Executor, settings Settings, opts ...ServiceOption) *Service {
	settings.ApplyDefaults()
	s := &Service{exec: exec, settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New validates settings and creates a service over an HTTPExecutor built
// from settings.Transport.
func New(settings Settings, opts ...ServiceOption) (*Service, error) {
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	exec, err := NewHTTPExecutor(settings.Transport)
	if err != nil {
		return nil, err
	}
	return NewService(exec, settings, opts...), nil
}

// Settings returns a copy of the service settings.
func (s *Service) Settings() Settings { return s.settings }

// Executor returns the (decorated) executor.
func (s *Service) Executor() Executor { return s.exec }

// Assemble builds the request for r under the service settings.
func (s *Service) Assemble(r Router) (*TransportRequest, error) {
	return Assemble(r, s.settings)
}

// FetchRaw assembles r, executes it and returns the body of a 2xx response.
func (s *Service) FetchRaw(ctx context.Context, r Router) ([]byte, error) {
	req, err := s.Assemble(r)
	if err != nil {
		return nil, err
	}
	return s.SendRaw(ctx, req)
}

// SendRaw executes req and returns the body of a 2xx response.
func (s *Service) SendRaw(ctx context.Context, req *TransportRequest) ([]byte, error) {
	resp, err := s.roundTrip(ctx, req, nil, false)
	if err != nil {
		return nil, err
	}
	return validate(resp)
}

// UploadRaw assembles r without body parameters, sends p as the body and
// returns the body of a 2xx response.
func (s *Service) UploadRaw(ctx context.Context, r Router, p Payload) ([]byte, error) {
	resp, err := s.upload(ctx, r, p)
	if err != nil {
		return nil, err
	}
	return validate(resp)
}

// Fetch assembles r, executes it and decodes a 2xx JSON body into T.
func Fetch[T any](ctx context.Context, s *Service, r Router) (T, error) {
	req, err := s.Assemble(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return Send[T](ctx, s, req)
}

// Send executes req and decodes a 2xx JSON body into T.
func Send[T any](ctx context.Context, s *Service, req *TransportRequest) (T, error) {
	resp, err := s.roundTrip(ctx, req, nil, false)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](resp, s.settings.StrictDecoding)
}

// Upload sends p as the body of r and decodes a 2xx JSON body into T.
func Upload[T any](ctx context.Context, s *Service, r Router, p Payload) (T, error) {
	resp, err := s.upload(ctx, r, p)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](resp, s.settings.StrictDecoding)
}

// FetchWithError is Fetch with an error model: a 4xx body, or a success
// body that is not a T, is decoded once as E and reported as a
// KindClientModel error, falling back to KindClientData.
func FetchWithError[T, E any](ctx context.Context, s *Service, r Router) (T, error) {
	out, err := FetchOutcome[T, E](ctx, s, r)
	if err != nil {
		var zero T
		return zero, err
	}
	return out.Result()
}

// SendWithError is FetchWithError for an assembled request.
func SendWithError[T, E any](ctx context.Context, s *Service, req *TransportRequest) (T, error) {
	out, err := SendOutcome[T, E](ctx, s, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return out.Result()
}

// UploadWithError is FetchWithError for an upload.
func UploadWithError[T, E any](ctx context.Context, s *Service, r Router, p Payload) (T, error) {
	resp, err := s.upload(ctx, r, p)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := decodeOutcome[T, E](resp, s.settings.StrictDecoding)
	if err != nil {
		var zero T
		return zero, err
	}
	return out.Result()
}

// FetchOutcome assembles r, executes it and returns the dual-path outcome.
// The error is set only for failures outside 2xx and 4xx handling: host,
// network, server and unexpected status.
func FetchOutcome[T, E any](ctx context.Context, s *Service, r Router) (Outcome[T, E], error) {
	req, err := s.Assemble(r)
	if err != nil {
		return Outcome[T, E]{}, err
	}
	return SendOutcome[T, E](ctx, s, req)
}

// SendOutcome is FetchOutcome for an assembled request.
func SendOutcome[T, E any](ctx context.Context, s *Service, req *TransportRequest) (Outcome[T, E], error) {
	resp, err := s.roundTrip(ctx, req, nil, false)
	if err != nil {
		return Outcome[T, E]{}, err
	}
	return decodeOutcome[T, E](resp, s.settings.StrictDecoding)
}

func (s *Service) upload(ctx context.Context, r Router, p Payload) (*TransportResponse, error) {
	var req *TransportRequest
	var err error
	if rc, ok := r.(RequestConvertible); ok {
		req, err = rc.TransportRequest(s.settings)
	} else {
		req, err = BuildRequest(bodyless{r}, s.settings)
	}
	if err != nil {
		return nil, err
	}
	if p.ContentType != "" && req.Header.Get("Content-Type") == "" {
		req = req.Clone()
		req.Header.Set("Content-Type", p.ContentType)
	}
	data := p.Data
	if data == nil {
		data = []byte{}
	}
	return s.roundTrip(ctx, req, data, true)
}

// bodyless hides a router's body parameters; uploads carry a payload instead.
type bodyless struct{ Router }

func (bodyless) BodyParameters() param.Parameters { return nil }

var errNoResponse = errors.New("executor returned no response")

// roundTrip executes req. Every failure before a response exists, and any
// cancellation of ctx, is reported as KindNetwork.
func (s *Service) roundTrip(ctx context.Context, req *TransportRequest, payload []byte, upload bool) (*TransportResponse, error) {
	if req == nil || req.URL == nil {
		return nil, NewMissingURLError()
	}

	start := time.Now()
	var resp *TransportResponse
	var err error
	if upload {
		resp, err = s.exec.Upload(ctx, req, payload)
	} else {
		resp, err = s.exec.Execute(ctx, req)
	}
	d := time.Since(start)

	switch {
	case err != nil:
		return nil, NewNetworkError(err)
	case ctx.Err() != nil:
		return nil, NewNetworkError(ctx.Err())
	case resp == nil:
		return nil, NewNetworkError(errNoResponse)
	}
	s.trace(req, payload, resp, d)
	return resp, nil
}

// trace hands a completed exchange to the debug logger. A panicking logger
// is contained.
func (s *Service) trace(req *TransportRequest, payload []byte, resp *TransportResponse, d time.Duration) {
	if !s.settings.Debug || s.debug == nil {
		return
	}
	defer func() { _ = recover() }()
	s.debug.LogExchange(Exchange{
		ID:       uuid.NewString(),
		Request:  req.Redacted(),
		Payload:  payload,
		Response: resp,
		Duration: d,
	})
}
