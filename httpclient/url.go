package httpclient

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kbukum/netfoundation/param"
)

// BuildURL resolves host, query items and a path segment into an absolute
// URL. Query items follow any query already on host; path is appended to
// the host's existing path.
func BuildURL(host string, query []param.Pair, path string) (*url.URL, error) {
	if strings.TrimSpace(host) == "" {
		return nil, NewHostError("no host is found", nil)
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, NewHostError(fmt.Sprintf("couldn't create URL with host: %s", host), err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, NewHostError(fmt.Sprintf("couldn't create URL with host: %s", host), nil)
	}

	if len(query) > 0 {
		encoded := param.EncodePairs(query)
		if u.RawQuery != "" {
			u.RawQuery += "&" + encoded
		} else {
			u.RawQuery = encoded
		}
	}

	if path != "" {
		appendPath(u, path)
	}
	return u, nil
}

// appendPath adds path under u's existing path with exactly one slash
// between them. Dot segments and repeated slashes are kept as given, so the
// host path always stays a prefix.
func appendPath(u *url.URL, path string) {
	path = strings.TrimLeft(path, "/")
	if u.RawPath != "" {
		u.RawPath = strings.TrimSuffix(u.RawPath, "/") + "/" + escapeSegments(path)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + path
}

func escapeSegments(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
