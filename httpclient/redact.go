package httpclient

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// redactedValue replaces credentials in traces, logs and request previews.
const redactedValue = "xxxxx"

// credentialNames are header and query names masked regardless of
// configuration, compared in lower case. Names containing "token", "secret"
// or "password" are masked as well.
var credentialNames = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"api-key":             true,
	"api_key":             true,
	"apikey":              true,
	"key":                 true,
	"signature":           true,
	"sig":                 true,
}

func isCredential(name string, extra []string) bool {
	n := strings.ToLower(name)
	if credentialNames[n] {
		return true
	}
	for _, part := range []string{"token", "secret", "password"} {
		if strings.Contains(n, part) {
			return true
		}
	}
	return slices.ContainsFunc(extra, func(e string) bool { return strings.EqualFold(e, name) })
}

// Redacted returns a copy of r with credentials masked: the userinfo
// password, credential headers and credential query values, including the
// header or query name an API key was applied under.
func (r *TransportRequest) Redacted() *TransportRequest {
	cp := r.Clone()
	if cp.URL != nil {
		if _, ok := cp.URL.User.Password(); ok {
			cp.URL.User = url.UserPassword(cp.URL.User.Username(), redactedValue)
		}
		cp.URL.RawQuery = redactQuery(cp.URL.RawQuery, r.credentials)
	}
	cp.Header = redactHeader(cp.Header, r.credentials)
	return cp
}

// redactQuery masks credential values in a raw query, leaving every other
// pair byte for byte.
func redactQuery(raw string, extra []string) string {
	if raw == "" {
		return raw
	}
	pairs := strings.Split(raw, "&")
	for i, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}
		if isCredential(name, extra) {
			pairs[i] = key + "=" + redactedValue
		}
	}
	return strings.Join(pairs, "&")
}

// redactHeader masks credential headers in place and returns h.
func redactHeader(h http.Header, extra []string) http.Header {
	for k, v := range h {
		if !isCredential(k, extra) {
			continue
		}
		masked := make([]string, len(v))
		for i := range masked {
			masked[i] = maskAuthorization(v[i])
		}
		h[k] = masked
	}
	return h
}

// maskAuthorization keeps the scheme of an authorization value.
func maskAuthorization(v string) string {
	if scheme, _, ok := strings.Cut(v, " "); ok && (strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Basic")) {
		return scheme + " " + redactedValue
	}
	return redactedValue
}

func redactedURL(req *TransportRequest) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.Redacted().URL.String()
}
