package httpclient

import "github.com/kbukum/netfoundation/param"

// Router describes a request as data.
type Router interface {
	// Method is the HTTP method.
	Method() Method
	// Host is the absolute base URL, e.g. "https://api.example.com/v1".
	Host() string
	// Path is appended to the host's path as a segment.
	Path() string
	// Headers are request headers. Nil means none.
	Headers() map[string]string
	// BodyParameters are encoded into the body. Nil means no body.
	BodyParameters() param.Parameters
	// QueryParameters are encoded into the query string. Nil means none.
	QueryParameters() param.Parameters
}

// BaseRouter supplies empty headers and parameters. Embed it in routers that
// only define Method, Host and Path.
type BaseRouter struct{}

// Headers returns nil.
func (BaseRouter) Headers() map[string]string { return nil }

// BodyParameters returns nil.
func (BaseRouter) BodyParameters() param.Parameters { return nil }

// QueryParameters returns nil.
func (BaseRouter) QueryParameters() param.Parameters { return nil }

// RequestConvertible is implemented by routers that build their own
// TransportRequest instead of the default assembly.
type RequestConvertible interface {
	TransportRequest(s Settings) (*TransportRequest, error)
}

// Route is a plain Router value.
type Route struct {
	Verb     Method
	BaseURL  string
	Endpoint string
	Header   map[string]string
	Query    param.Parameters
	Body     param.Parameters
}

var _ Router = Route{}

// Method returns the route's method, GET when unset.
func (r Route) Method() Method {
	if r.Verb == "" {
		return MethodGet
	}
	return r.Verb
}

// Host returns the base URL.
func (r Route) Host() string { return r.BaseURL }

// Path returns the endpoint path.
func (r Route) Path() string { return r.Endpoint }

// Headers returns the route headers.
func (r Route) Headers() map[string]string { return r.Header }

// BodyParameters returns the body parameters.
func (r Route) BodyParameters() param.Parameters { return r.Body }

// QueryParameters returns the query parameters.
func (r Route) QueryParameters() param.Parameters { return r.Query }
