package httpclient

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP request method.
type Method string

const (
	MethodConnect Method = http.MethodConnect
	MethodDelete  Method = http.MethodDelete
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	MethodPatch   Method = http.MethodPatch
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodQuery   Method = "QUERY"
	MethodTrace   Method = http.MethodTrace
)

var methods = []Method{
	MethodConnect,
	MethodDelete,
	MethodGet,
	MethodHead,
	MethodOptions,
	MethodPatch,
	MethodPost,
	MethodPut,
	MethodQuery,
	MethodTrace,
}

// Methods returns every supported method.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("httpclient: unsupported method %q", s)
	}
	return m, nil
}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	for _, known := range methods {
		if m == known {
			return true
		}
	}
	return false
}

// String returns the method name.
func (m Method) String() string { return string(m) }
