package testutil

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MethodQuery is the HTTP QUERY method, registered on the echo route next
// to the standard ones.
const MethodQuery = "QUERY"

// Echo is the JSON document returned by the echo route.
type Echo struct {
	Method   string              `json:"method"`
	Path     string              `json:"path"`
	RawQuery string              `json:"raw_query"`
	Query    map[string][]string `json:"query"`
	Header   map[string]string   `json:"header"`
	Body     string              `json:"body"`
	Proto    string              `json:"proto"`
}

// Recorded is a request as the server received it.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
	Proto    string
}

// Server is a recording gin test server.
type Server struct {
	engine *gin.Engine
	ts     *httptest.Server

	mu       sync.Mutex
	requests []Recorded
}

// NewServer starts a plain HTTP server closed with the test.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := newServer()
	s.ts = httptest.NewServer(s.engine)
	t.Cleanup(s.ts.Close)
	return s
}

// NewTLSServer starts an HTTPS server using cfg, closed with the test.
// With http2 the server negotiates h2 over ALPN.
func NewTLSServer(t testing.TB, cfg *tls.Config, http2 bool) *Server {
	t.Helper()
	s := newServer()
	s.ts = httptest.NewUnstartedServer(s.engine)
	s.ts.EnableHTTP2 = http2
	s.ts.TLS = cfg
	s.ts.StartTLS()
	t.Cleanup(s.ts.Close)
	return s
}

func newServer() *Server {
	s := &Server{engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.record)

	s.engine.Any("/echo", echo)
	s.engine.Any("/echo/*path", echo)
	s.engine.Handle(MethodQuery, "/echo", echo)
	s.engine.Handle(MethodQuery, "/echo/*path", echo)
	s.engine.Any("/status/:code", status)
	s.engine.GET("/delay/:dur", delay)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string { return s.ts.URL }

// Client returns an http.Client for the server. It trusts the server's
// certificate when serving TLS.
func (s *Server) Client() *http.Client { return s.ts.Client() }

// Handle registers a route. Register before sending requests to it.
func (s *Server) Handle(method, path string, handlers ...gin.HandlerFunc) {
	s.engine.Handle(method, path, handlers...)
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Count returns the number of requests received.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Header:   c.Request.Header.Clone(),
		Body:     body,
		Proto:    c.Request.Proto,
	})
	s.mu.Unlock()

	c.Next()
}

func echo(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	header := make(map[string]string, len(c.Request.Header)+1)
	for k := range c.Request.Header {
		header[k] = c.Request.Header.Get(k)
	}
	header["Host"] = c.Request.Host
	c.JSON(http.StatusOK, Echo{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Query:    c.Request.URL.Query(),
		Header:   header,
		Body:     string(body),
		Proto:    c.Request.Proto,
	})
}

func status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 100 || code > 999 {
		c.String(http.StatusBadRequest, "invalid status code %q", c.Param("code"))
		return
	}
	contentType := c.DefaultQuery("content_type", "application/json")
	c.Data(code, contentType, []byte(c.Query("body")))
}

func delay(c *gin.Context) {
	d, err := time.ParseDuration(c.Param("dur"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid duration %q", c.Param("dur"))
		return
	}
	select {
	case <-time.After(d):
		c.String(http.StatusOK, "done")
	case <-c.Request.Context().Done():
	}
}
