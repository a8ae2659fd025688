package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/kbukum/netfoundation/logger"
)

// Exchange is one completed request/response pair handed to a
// DebugLogger. Failed exchanges are not traced.
type Exchange struct {
	// ID identifies the exchange across log lines.
	ID      string
	Request *TransportRequest
	// Payload is the upload body, nil for plain requests.
	Payload  []byte
	Response *TransportResponse
	Duration time.Duration
}

// Body returns the body that was sent.
func (x Exchange) Body() []byte {
	if x.Payload != nil {
		return x.Payload
	}
	if x.Request != nil {
		return x.Request.Body
	}
	return nil
}

// DebugLogger receives exchanges when Settings.Debug is on. It must not
// retain or modify them. Requests arrive with credentials masked.
type DebugLogger interface {
	LogExchange(x Exchange)
}

// DebugLoggerFunc adapts a function to DebugLogger.
type DebugLoggerFunc func(x Exchange)

// LogExchange calls f.
func (f DebugLoggerFunc) LogExchange(x Exchange) { f(x) }

// maxLoggedBody caps body bytes written by the built-in traces.
const maxLoggedBody = 64 << 10

// LogTrace writes exchanges as structured log entries.
type LogTrace struct {
	log *logger.Logger
}

// NewLogTrace creates a trace writing to log at debug level.
func NewLogTrace(log *logger.Logger) *LogTrace {
	return &LogTrace{log: log.WithComponent("httpclient.trace")}
}

// LogExchange implements DebugLogger.
func (t *LogTrace) LogExchange(x Exchange) {
	l := t.log.WithFields(map[string]interface{}{logger.FieldExchangeID: x.ID})

	req := map[string]interface{}{}
	if x.Request != nil {
		req[logger.FieldMethod] = string(x.Request.Method)
		masked := x.Request.Redacted()
		req[logger.FieldURL] = masked.URL.String()
		req["headers"] = flatten(masked.Header)
	}
	if body := x.Body(); len(body) > 0 {
		req["body"] = truncate(body)
	}
	l.Debug("request", req)

	res := logger.DurationFields("response", x.Duration)
	if x.Response != nil {
		res[logger.FieldStatusCode] = x.Response.StatusCode
		res[logger.FieldBytes] = len(x.Response.Body)
		res["headers"] = flatten(redactHeader(x.Response.Header.Clone(), nil))
		if len(x.Response.Body) > 0 {
			res["body"] = truncate(x.Response.Body)
		}
	}
	l.Debug("response", res)
}

// ConsoleTrace prints exchanges in a readable, optionally colored form.
// JSON bodies are indented.
type ConsoleTrace struct {
	mu  sync.Mutex
	w   io.Writer
	req *color.Color
	ok  *color.Color
	bad *color.Color
	dim *color.Color
}

// NewConsoleTrace creates a trace writing to w.
func NewConsoleTrace(w io.Writer, noColor bool) *ConsoleTrace {
	t := &ConsoleTrace{
		w:   w,
		req: color.New(color.FgCyan, color.Bold),
		ok:  color.New(color.FgGreen, color.Bold),
		bad: color.New(color.FgRed, color.Bold),
		dim: color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{t.req, t.ok, t.bad, t.dim} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{t.req, t.ok, t.bad, t.dim} {
			c.EnableColor()
		}
	}
	return t
}

// LogExchange implements DebugLogger.
func (t *ConsoleTrace) LogExchange(x Exchange) {
	var b strings.Builder

	if x.Request != nil {
		masked := x.Request.Redacted()
		t.req.Fprintf(&b, "> %s %s\n", masked.Method, masked.URL)
		writeHeaders(&b, t.dim, "> ", masked.Header)
	}
	if body := x.Body(); len(body) > 0 {
		b.WriteString(prettyBody(body))
		b.WriteString("\n")
	}

	if x.Response != nil {
		c := t.ok
		if x.Response.StatusCode >= 400 || x.Response.StatusCode < 200 {
			c = t.bad
		}
		c.Fprintf(&b, "< %d %s (%s)\n", x.Response.StatusCode, statusText(x.Response.StatusCode), x.Duration.Round(time.Millisecond))
		writeHeaders(&b, t.dim, "< ", redactHeader(x.Response.Header.Clone(), nil))
		if len(x.Response.Body) > 0 {
			b.WriteString(prettyBody(x.Response.Body))
			b.WriteString("\n")
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, b.String())
}

func writeHeaders(b *strings.Builder, c *color.Color, prefix string, h map[string][]string) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Fprintf(b, "%s%s: %s\n", prefix, k, strings.Join(h[k], ", "))
	}
}

// prettyBody indents JSON and truncates everything else.
func prettyBody(body []byte) string {
	var buf bytes.Buffer
	if json.Valid(body) && json.Indent(&buf, body, "", "  ") == nil {
		return truncate(buf.Bytes())
	}
	return truncate(body)
}

func truncate(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return fmt.Sprintf("%s... (%d bytes truncated)", body[:maxLoggedBody], len(body)-maxLoggedBody)
}

func flatten(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}
