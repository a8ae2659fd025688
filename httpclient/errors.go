package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies pipeline failures.
type ErrorKind int

const (
	// KindHost indicates a missing or malformed host.
	KindHost ErrorKind = iota + 1
	// KindNetwork indicates the executor failed or the call was cancelled.
	KindNetwork
	// KindUnexpectedStatus indicates a status outside 2xx, 4xx and 5xx.
	KindUnexpectedStatus
	// KindServer indicates a 5xx status.
	KindServer
	// KindClientData indicates a 4xx status carrying the raw body.
	KindClientData
	// KindClientModel indicates a 4xx status whose body decoded into the error model.
	KindClientModel
	// KindDecoding indicates the success body did not decode into the target type.
	KindDecoding
	// KindMissingURL indicates a request without a URL.
	KindMissingURL
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindNetwork:
		return "network"
	case KindUnexpectedStatus:
		return "unexpected_status"
	case KindServer:
		return "server"
	case KindClientData:
		return "client_data"
	case KindClientModel:
		return "client_model"
	case KindDecoding:
		return "decoding"
	case KindMissingURL:
		return "missing_url"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline failure. An *Error never wraps another *Error.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Description is a human-readable detail (host, network and decoding kinds).
	Description string
	// StatusCode is the HTTP status code (0 before a response exists).
	StatusCode int
	// Body is the raw response body (client data and decoding kinds).
	Body []byte
	// Model is the decoded error model (client model kind).
	Model any
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.message()
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Kind, msg)
}

func (e *Error) message() string {
	switch e.Kind {
	case KindHost:
		return "please check your host: " + e.Description
	case KindDecoding:
		return "decoding failure: " + e.Description
	case KindServer:
		return "server error"
	case KindUnexpectedStatus:
		return "unexpected status code"
	case KindClientData:
		return fmt.Sprintf("client error with %d byte body", len(e.Body))
	case KindClientModel:
		return fmt.Sprintf("client error model %T", e.Model)
	case KindMissingURL:
		return "missing URL"
	default:
		return e.Description
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewHostError creates a host error.
func NewHostError(description string, err error) *Error {
	return &Error{Kind: KindHost, Description: description, Err: err}
}

// NewNetworkError wraps an executor failure. A classified error passed in is
// flattened into the new one.
func NewNetworkError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		cause := e.Err
		if cause == nil {
			cause = errors.New(e.message())
		}
		return &Error{Kind: KindNetwork, Description: "failed to fetch data: " + e.message(), Err: cause}
	}
	return &Error{Kind: KindNetwork, Description: "failed to fetch data: " + err.Error(), Err: err}
}

// NewUnexpectedStatusError creates an error for a status outside the known ranges.
func NewUnexpectedStatusError(statusCode int, body []byte) *Error {
	return &Error{Kind: KindUnexpectedStatus, StatusCode: statusCode, Body: body}
}

// NewServerError creates a 5xx error.
func NewServerError(statusCode int) *Error {
	return &Error{Kind: KindServer, StatusCode: statusCode}
}

// NewClientDataError creates a 4xx error carrying the raw body.
func NewClientDataError(statusCode int, body []byte) *Error {
	return &Error{Kind: KindClientData, StatusCode: statusCode, Body: body}
}

// NewClientModelError creates a 4xx error carrying the decoded error model.
func NewClientModelError(statusCode int, body []byte, model any) *Error {
	return &Error{Kind: KindClientModel, StatusCode: statusCode, Body: body, Model: model}
}

// NewDecodingError creates an error for a success body that failed to decode.
func NewDecodingError(statusCode int, body []byte, err error) *Error {
	return &Error{Kind: KindDecoding, StatusCode: statusCode, Description: err.Error(), Body: body, Err: err}
}

// NewMissingURLError creates a missing URL error.
func NewMissingURLError() *Error {
	return &Error{Kind: KindMissingURL}
}

// KindOf returns the kind of a classified error, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// ClientModel extracts the decoded error model of type E from err.
func ClientModel[E any](err error) (E, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindClientModel {
		if m, ok := e.Model.(E); ok {
			return m, true
		}
	}
	var zero E
	return zero, false
}

// IsHost checks if an error is a host error.
func IsHost(err error) bool { return KindOf(err) == KindHost }

// IsNetwork checks if an error is a network error.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsUnexpectedStatus checks if an error is an unexpected status error.
func IsUnexpectedStatus(err error) bool { return KindOf(err) == KindUnexpectedStatus }

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool { return KindOf(err) == KindServer }

// IsClientData checks if an error is a raw client error.
func IsClientData(err error) bool { return KindOf(err) == KindClientData }

// IsClientModel checks if an error carries a decoded error model.
func IsClientModel(err error) bool { return KindOf(err) == KindClientModel }

// IsClientError checks if an error came from a 4xx status.
func IsClientError(err error) bool {
	k := KindOf(err)
	return k == KindClientData || k == KindClientModel
}

// IsDecoding checks if an error is a decoding error.
func IsDecoding(err error) bool { return KindOf(err) == KindDecoding }

// IsMissingURL checks if an error is a missing URL error.
func IsMissingURL(err error) bool { return KindOf(err) == KindMissingURL }

// IsTimeout checks if a network error was caused by a deadline.
func IsTimeout(err error) bool {
	if !IsNetwork(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsRetryable checks if an error is worth retrying: network failures other
// than caller cancellation, and server errors.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork:
		return !errors.Is(err, context.Canceled)
	case KindServer:
		return true
	default:
		return false
	}
}
