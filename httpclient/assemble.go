package httpclient

import (
	"net/http"
	"sort"
)

// Assemble turns a Router into a TransportRequest under s. Routers that
// implement RequestConvertible build their own request.
func Assemble(r Router, s Settings) (*TransportRequest, error) {
	if rc, ok := r.(RequestConvertible); ok {
		return rc.TransportRequest(s)
	}
	return BuildRequest(r, s)
}

// BuildRequest is the default assembly. Headers merge in order: settings
// defaults, router headers, authentication. Body parameters are encoded
// with the settings' policy and set Content-Type unless the router did.
func BuildRequest(r Router, s Settings) (*TransportRequest, error) {
	policy := s.Encoding
	policy.ApplyDefaults()

	u, err := BuildURL(r.Host(), policy.QueryItems(r.QueryParameters()), r.Path())
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	setHeaders(header, s.Headers)
	setHeaders(header, r.Headers())
	if s.UserAgent != "" && header.Get("User-Agent") == "" {
		header.Set("User-Agent", s.UserAgent)
	}

	method := r.Method()
	if method == "" {
		method = MethodGet
	}

	req := &TransportRequest{
		URL:     u,
		Method:  method,
		Header:  header,
		Timeout: s.Timeout,
	}

	if body := r.BodyParameters(); body != nil {
		data, contentType := policy.EncodeBody(body)
		req.Body = data
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", contentType)
		}
	}

	s.Auth.apply(req)
	return req, nil
}

// setHeaders copies m into h in key order so that keys differing only in
// case resolve deterministically.
func setHeaders(h http.Header, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Set(k, m[k])
	}
}
