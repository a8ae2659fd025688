package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Executor performs exchanges. Implementations must be safe for concurrent use.
type Executor interface {
	// Execute sends req with its own body.
	Execute(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
	// Upload sends req with payload as the body.
	Upload(ctx context.Context, req *TransportRequest, payload []byte) (*TransportResponse, error)
}

// ExecutorFunc adapts a function to Executor. Execute passes a nil payload.
type ExecutorFunc func(ctx context.Context, req *TransportRequest, payload []byte) (*TransportResponse, error)

// Execute calls f with a nil payload.
func (f ExecutorFunc) Execute(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	return f(ctx, req, nil)
}

// Upload calls f.
func (f ExecutorFunc) Upload(ctx context.Context, req *TransportRequest, payload []byte) (*TransportResponse, error) {
	return f(ctx, req, payload)
}

const defaultPingTimeout = 15 * time.Second

// HTTPExecutor executes requests with net/http.
type HTTPExecutor struct {
	client *http.Client
}

var _ Executor = (*HTTPExecutor)(nil)

// NewHTTPExecutor builds an executor with its own transport.
func NewHTTPExecutor(cfg TransportConfig) (*HTTPExecutor, error) {
	cfg.ApplyDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	transport.IdleConnTimeout = cfg.IdleConnTimeout

	if cfg.TLS != nil {
		if err := cfg.TLS.Validate(); err != nil {
			return nil, err
		}
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	if cfg.HTTP2 {
		h2, err := http2.ConfigureTransports(transport)
		if err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
		if cfg.ReadIdleTimeout > 0 {
			h2.ReadIdleTimeout = cfg.ReadIdleTimeout
			h2.PingTimeout = defaultPingTimeout
		}
	} else {
		// A non-nil empty map keeps the transport on HTTP/1.1.
		transport.ForceAttemptHTTP2 = false
		transport.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	}

	client := &http.Client{Transport: transport}
	if cfg.DisableRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &HTTPExecutor{client: client}, nil
}

// NewClientExecutor wraps an existing client.
func NewClientExecutor(client *http.Client) *HTTPExecutor {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPExecutor{client: client}
}

// Execute sends req and reads the full response.
func (e *HTTPExecutor) Execute(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	return e.do(ctx, req, nil)
}

// Upload sends req with payload as the body.
func (e *HTTPExecutor) Upload(ctx context.Context, req *TransportRequest, payload []byte) (*TransportResponse, error) {
	if payload == nil {
		payload = []byte{}
	}
	return e.do(ctx, req, payload)
}

// Close releases idle connections.
func (e *HTTPExecutor) Close() {
	e.client.CloseIdleConnections()
}

func (e *HTTPExecutor) do(ctx context.Context, req *TransportRequest, payload []byte) (*TransportResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := req.HTTPRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Proto:      resp.Proto,
	}, nil
}
