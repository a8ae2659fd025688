package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"
)

// TransportRequest is a wire-ready request. Treat it as immutable once
// built; use Clone or WithBody to derive variants.
type TransportRequest struct {
	// URL is the absolute request URL.
	URL *url.URL
	// Method is the HTTP method.
	Method Method
	// Header holds the merged request headers.
	Header http.Header
	// Body is the encoded body, nil when absent.
	Body []byte
	// Timeout bounds the whole exchange. Zero means no timeout.
	Timeout time.Duration

	// credentials names the header or query key authentication wrote to.
	credentials []string
}

// Clone returns a deep copy of r.
func (r *TransportRequest) Clone() *TransportRequest {
	cp := *r
	if r.URL != nil {
		u := *r.URL
		if r.URL.User != nil {
			user := *r.URL.User
			u.User = &user
		}
		cp.URL = &u
	}
	cp.Header = r.Header.Clone()
	if cp.Header == nil {
		cp.Header = make(http.Header)
	}
	if r.Body != nil {
		cp.Body = bytes.Clone(r.Body)
	}
	cp.credentials = slices.Clone(r.credentials)
	return &cp
}

// WithBody returns a copy of r carrying body. A non-empty contentType
// replaces the Content-Type header.
func (r *TransportRequest) WithBody(body []byte, contentType string) *TransportRequest {
	cp := r.Clone()
	cp.Body = body
	if contentType != "" {
		cp.Header.Set("Content-Type", contentType)
	}
	return cp
}

// TransportRequest returns a copy of r, so a built request can be sent
// anywhere a RequestConvertible is accepted.
func (r *TransportRequest) TransportRequest(Settings) (*TransportRequest, error) {
	if r.URL == nil {
		return nil, NewMissingURLError()
	}
	return r.Clone(), nil
}

// HTTPRequest converts r into an *http.Request bound to ctx. The body, if
// any, is replaced by payload when payload is non-nil.
func (r *TransportRequest) HTTPRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	if r.URL == nil {
		return nil, NewMissingURLError()
	}
	data := r.Body
	if payload != nil {
		data = payload
	}
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	method := r.Method
	if method == "" {
		method = MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, string(method), r.URL.String(), body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	if host := r.Header.Get("Host"); host != "" {
		req.Host = host
	}
	return req, nil
}

// TransportResponse is a completed exchange.
type TransportResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header holds the response headers.
	Header http.Header
	// Body is the full response body.
	Body []byte
	// Proto is the protocol the response arrived over, e.g. "HTTP/2.0".
	Proto string
}

// IsSuccess returns true if the status code is 2xx.
func (r *TransportResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *TransportResponse) IsError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 600
}
