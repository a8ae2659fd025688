package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/netfoundation/param"
	"github.com/kbukum/netfoundation/resilience"
	"github.com/kbukum/netfoundation/testutil"
	"github.com/kbukum/netfoundation/validation"
)

type testModel struct {
	Name    string `json:"name" validate:"required"`
	Success bool   `json:"success"`
}

type testAPIError struct {
	Error   string `json:"error" validate:"required"`
	Message string `json:"message"`
}

func newTestService(t *testing.T, srv *testutil.Server, opts ...ServiceOption) *Service {
	t.Helper()
	return NewService(NewClientExecutor(srv.Client()), Settings{Timeout: 5 * time.Second}, opts...)
}

func statusRoute(srv *testutil.Server, code int, body string) Route {
	return Route{
		BaseURL:  srv.URL(),
		Endpoint: "status/" + strconv.Itoa(code),
		Query:    param.Parameters{"body": param.String(body)},
	}
}

// staticExecutor answers every request with the same response.
func staticExecutor(status int, body string) ExecutorFunc {
	return func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		return &TransportResponse{StatusCode: status, Header: http.Header{}, Body: []byte(body)}, nil
	}
}

func staticRoute() Route {
	return Route{BaseURL: "https://api.example.com", Endpoint: "things"}
}

func TestFetch_Success(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	got, err := Fetch[testModel](t.Context(), svc, statusRoute(srv, 200, `{"name":"Test","success":true}`))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Name != "Test" || !got.Success {
		t.Errorf("unexpected value %+v", got)
	}
}

func TestFetch_EmptySuccessBody(t *testing.T) {
	svc := NewService(staticExecutor(204, ""), Settings{})
	got, err := Fetch[testModel](t.Context(), svc, staticRoute())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != (testModel{}) {
		t.Errorf("expected zero value, got %+v", got)
	}
}

func TestFetch_DecodingError(t *testing.T) {
	svc := NewService(staticExecutor(200, `{"name":`), Settings{})
	_, err := Fetch[testModel](t.Context(), svc, staticRoute())
	if !IsDecoding(err) {
		t.Fatalf("expected decoding error, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || string(e.Body) != `{"name":` || e.StatusCode != 200 {
		t.Errorf("decoding error should carry status and body: %+v", e)
	}
}

func TestFetch_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"client error", 404, `{"error":"not_found"}`, IsClientData},
		{"too many requests", 429, "", IsClientData},
		{"server error", 503, "", IsServerError},
		{"bad gateway", 502, "oops", IsServerError},
		{"not modified", 304, "", IsUnexpectedStatus},
	}
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fetch[testModel](t.Context(), svc, statusRoute(srv, tt.status, tt.body))
			if !tt.check(err) {
				t.Fatalf("unexpected error kind for %d: %v", tt.status, err)
			}
			if got := StatusCodeOf(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestFetch_UnexpectedStatusOutsideRanges(t *testing.T) {
	for _, code := range []int{101, 302, 999} {
		svc := NewService(staticExecutor(code, "x"), Settings{})
		_, err := Fetch[testModel](t.Context(), svc, staticRoute())
		if !IsUnexpectedStatus(err) || StatusCodeOf(err) != code {
			t.Errorf("status %d: expected unexpected status error, got %v", code, err)
		}
	}
}

func TestFetch_HostErrorSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	exec := ExecutorFunc(func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		calls.Add(1)
		return nil, errors.New("unreachable")
	})
	svc := NewService(exec, Settings{})
	_, err := Fetch[testModel](t.Context(), svc, Route{BaseURL: "not a url"})
	if !IsHost(err) {
		t.Fatalf("expected host error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("executor must not run for an invalid host")
	}
}

func TestFetch_NetworkErrorSkipsDecoding(t *testing.T) {
	cause := errors.New("connection refused")
	exec := ExecutorFunc(func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		return &TransportResponse{StatusCode: 200, Body: []byte(`{"name":"ignored"}`)}, cause
	})
	svc := NewService(exec, Settings{})

	_, err := Fetch[testModel](t.Context(), svc, staticRoute())
	if !IsNetwork(err) || !errors.Is(err, cause) {
		t.Fatalf("expected network error wrapping cause, got %v", err)
	}
	_, err = FetchWithError[testModel, testAPIError](t.Context(), svc, staticRoute())
	if !IsNetwork(err) {
		t.Fatalf("dual path: expected network error, got %v", err)
	}
}

func TestFetch_NilResponse(t *testing.T) {
	exec := ExecutorFunc(func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		return nil, nil
	})
	_, err := Fetch[testModel](t.Context(), NewService(exec, Settings{}), staticRoute())
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := Fetch[testModel](ctx, svc, Route{BaseURL: srv.URL(), Endpoint: "echo"})
	if !IsNetwork(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected network error from cancellation, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := NewService(NewClientExecutor(srv.Client()), Settings{Timeout: 50 * time.Millisecond})

	_, err := svc.FetchRaw(t.Context(), Route{BaseURL: srv.URL(), Endpoint: "delay/2s"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("a timeout should be retryable")
	}
}

func TestFetchWithError(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	t.Run("success", func(t *testing.T) {
		got, err := FetchWithError[testModel, testAPIError](t.Context(), svc, statusRoute(srv, 201, `{"name":"made","success":true}`))
		if err != nil || got.Name != "made" {
			t.Fatalf("got %+v, %v", got, err)
		}
	})

	t.Run("client model", func(t *testing.T) {
		_, err := FetchWithError[testModel, testAPIError](t.Context(), svc, statusRoute(srv, 404, `{"error":"not_found","message":"no such user"}`))
		if !IsClientModel(err) {
			t.Fatalf("expected client model error, got %v", err)
		}
		m, ok := ClientModel[testAPIError](err)
		if !ok || m.Error != "not_found" || m.Message != "no such user" {
			t.Errorf("unexpected model %+v", m)
		}
		if StatusCodeOf(err) != 404 {
			t.Errorf("expected status 404, got %d", StatusCodeOf(err))
		}
	})

	t.Run("client data fallback", func(t *testing.T) {
		_, err := FetchWithError[testModel, testAPIError](t.Context(), svc, statusRoute(srv, 400, "plain text"))
		if !IsClientData(err) {
			t.Fatalf("expected client data error, got %v", err)
		}
		var e *Error
		if !errors.As(err, &e) || string(e.Body) != "plain text" {
			t.Errorf("raw body not kept: %v", err)
		}
	})

	t.Run("empty client body", func(t *testing.T) {
		_, err := FetchWithError[testModel, testAPIError](t.Context(), svc, statusRoute(srv, 422, ""))
		if !IsClientData(err) {
			t.Fatalf("empty body must not decode as a model, got %v", err)
		}
	})

	t.Run("server error unchanged", func(t *testing.T) {
		_, err := FetchWithError[testModel, testAPIError](t.Context(), svc, statusRoute(srv, 500, `{"error":"x"}`))
		if !IsServerError(err) {
			t.Fatalf("expected server error, got %v", err)
		}
	})
}

func TestFetchOutcome(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   OutcomeKind
	}{
		{"success", 200, `{"name":"a","success":true}`, OutcomeSuccess},
		{"client model", 409, `{"error":"conflict"}`, OutcomeClientError},
		{"success body is the error model", 200, `[{"error":"x"}]`, OutcomeRawFallback},
		{"success body fails T but fits E", 200, `{"name":5,"error":"weird"}`, OutcomeClientError},
		{"success status with error-shaped body", 200, `{"error":"quota_exceeded","message":"slow down"}`, OutcomeClientError},
		{"client body missing required model field", 404, `{"unrelated":true}`, OutcomeRawFallback},
		{"client body is an empty object", 422, `{}`, OutcomeRawFallback},
		{"raw", 400, "<html>", OutcomeRawFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(staticExecutor(tt.status, tt.body), Settings{})
			out, err := FetchOutcome[testModel, testAPIError](t.Context(), svc, staticRoute())
			if err != nil {
				t.Fatalf("FetchOutcome: %v", err)
			}
			if out.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", out.Kind, tt.kind)
			}
			if out.StatusCode != tt.status || string(out.Raw) != tt.body {
				t.Errorf("status/raw not kept: %d %q", out.StatusCode, out.Raw)
			}
		})
	}

	svc := NewService(staticExecutor(503, ""), Settings{})
	if _, err := FetchOutcome[testModel, testAPIError](t.Context(), svc, staticRoute()); !IsServerError(err) {
		t.Errorf("server errors are returned as errors, got %v", err)
	}
}

func TestFetchOutcome_StrictDecoding(t *testing.T) {
	body := `{"name":"a","error":"also here"}`

	lenient := NewService(staticExecutor(200, body), Settings{})
	out, err := FetchOutcome[testModel, testAPIError](t.Context(), lenient, staticRoute())
	if err != nil || out.Kind != OutcomeSuccess || out.Value.Name != "a" {
		t.Fatalf("lenient decoding ignores unknown fields: %+v %v", out, err)
	}

	strict := NewService(staticExecutor(200, body), Settings{StrictDecoding: true})
	out, err = FetchOutcome[testModel, testAPIError](t.Context(), strict, staticRoute())
	if err != nil || out.Kind != OutcomeRawFallback {
		t.Fatalf("strict decoding must reject both types: %+v %v", out, err)
	}
	if _, err := Fetch[testModel](t.Context(), strict, staticRoute()); !IsDecoding(err) {
		t.Errorf("expected decoding error, got %v", err)
	}

	strict = NewService(staticExecutor(200, `{"name":"a"} trailing`), Settings{StrictDecoding: true})
	if _, err := Fetch[testModel](t.Context(), strict, staticRoute()); !IsDecoding(err) {
		t.Errorf("trailing data must fail, got %v", err)
	}

	strict = NewService(staticExecutor(409, `{"error":"conflict","message":"taken"}`), Settings{StrictDecoding: true})
	_, err = FetchWithError[testModel, testAPIError](t.Context(), strict, staticRoute())
	if m, ok := ClientModel[testAPIError](err); !ok || m.Error != "conflict" {
		t.Errorf("exact error model should still decode: %v", err)
	}
}

func TestFetch_MissingRequiredField(t *testing.T) {
	svc := NewService(staticExecutor(200, `{"success":true}`), Settings{})
	_, err := Fetch[testModel](t.Context(), svc, staticRoute())
	if !IsDecoding(err) {
		t.Fatalf("expected decoding error, got %v", err)
	}
	if !validation.IsValidation(err) {
		t.Errorf("cause should be the validation failure: %v", err)
	}
}

func TestOutcome_Result(t *testing.T) {
	v, err := Outcome[testModel, testAPIError]{Kind: OutcomeSuccess, Value: testModel{Name: "x"}}.Result()
	if err != nil || v.Name != "x" {
		t.Errorf("success: %+v %v", v, err)
	}
	_, err = Outcome[testModel, testAPIError]{Kind: OutcomeClientError, StatusCode: 200, Model: testAPIError{Error: "e"}}.Result()
	if !IsClientModel(err) || StatusCodeOf(err) != 200 {
		t.Errorf("client error: %v", err)
	}
	_, err = Outcome[testModel, testAPIError]{Kind: OutcomeRawFallback, StatusCode: 418}.Result()
	if !IsClientData(err) {
		t.Errorf("raw fallback: %v", err)
	}
	if OutcomeKind(0).String() != "unknown" || OutcomeRawFallback.String() != "raw_fallback" {
		t.Error("unexpected kind names")
	}
}

func TestFetchRaw(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	body, err := svc.FetchRaw(t.Context(), statusRoute(srv, 200, "not json at all"))
	if err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if string(body) != "not json at all" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestSend_AssembledRequest(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	req, err := svc.Assemble(Route{
		Verb:     MethodQuery,
		BaseURL:  srv.URL(),
		Endpoint: "echo/search",
		Query:    param.Parameters{"tags": param.Strings("a", "b"), "on": param.Bool(true)},
		Body:     param.Parameters{"q": param.String("x")},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	echo, err := Send[testutil.Echo](t.Context(), svc, req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if echo.Method != "QUERY" || echo.Path != "/echo/search" {
		t.Errorf("unexpected target %s %s", echo.Method, echo.Path)
	}
	q, _ := url.ParseQuery(echo.RawQuery)
	if strings.Join(q["tags[]"], ",") != "a,b" || q.Get("on") != "1" {
		t.Errorf("unexpected query %q", echo.RawQuery)
	}
	if echo.Body != "q=x" || echo.Header["Content-Type"] != param.ContentTypeForm {
		t.Errorf("unexpected body %q (%s)", echo.Body, echo.Header["Content-Type"])
	}
	if !strings.HasPrefix(echo.Header["User-Agent"], "netfoundation/") {
		t.Errorf("default user agent missing: %q", echo.Header["User-Agent"])
	}

	if _, err := Send[testutil.Echo](t.Context(), svc, &TransportRequest{}); !IsMissingURL(err) {
		t.Errorf("expected missing URL, got %v", err)
	}
	if _, err := svc.SendRaw(t.Context(), nil); !IsMissingURL(err) {
		t.Errorf("expected missing URL for nil request, got %v", err)
	}
}

func TestSendWithError(t *testing.T) {
	svc := NewService(staticExecutor(422, `{"error":"invalid","message":"name is required"}`), Settings{})
	req, err := svc.Assemble(staticRoute())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	_, err = SendWithError[testModel, testAPIError](t.Context(), svc, req)
	model, ok := ClientModel[testAPIError](err)
	if !ok || model.Message != "name is required" {
		t.Errorf("expected client model, got %v", err)
	}

	out, err := SendOutcome[testModel, testAPIError](t.Context(), svc, req)
	if err != nil {
		t.Fatalf("SendOutcome: %v", err)
	}
	if out.Kind != OutcomeClientError || out.Model.Error != "invalid" || out.StatusCode != 422 {
		t.Errorf("unexpected outcome %+v", out)
	}

	if _, err := SendOutcome[testModel, testAPIError](t.Context(), svc, nil); !IsMissingURL(err) {
		t.Errorf("expected missing URL, got %v", err)
	}
}

func TestUpload(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	route := Route{
		Verb:     MethodPost,
		BaseURL:  srv.URL(),
		Endpoint: "echo/upload",
		Query:    param.Parameters{"v": param.Int(2)},
		Body:     param.Parameters{"ignored": param.String("yes")},
	}
	mp := &MultipartBody{
		Fields: map[string]string{"title": "report"},
		Files:  []FileField{{FieldName: "file", FileName: "r.txt", Data: []byte("content")}},
	}
	p, err := mp.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}

	echo, err := Upload[testutil.Echo](t.Context(), svc, route, p)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if echo.RawQuery != "v=2" {
		t.Errorf("query lost: %q", echo.RawQuery)
	}
	if echo.Header["Content-Type"] != p.ContentType {
		t.Errorf("content type = %q, want %q", echo.Header["Content-Type"], p.ContentType)
	}
	if echo.Body != string(p.Data) || strings.Contains(echo.Body, "ignored") {
		t.Error("upload must send the payload instead of body parameters")
	}

	raw, err := svc.UploadRaw(t.Context(), route, BytesPayload([]byte("abc"), "text/plain"))
	if err != nil {
		t.Fatalf("UploadRaw: %v", err)
	}
	var e testutil.Echo
	if err := json.Unmarshal(raw, &e); err != nil || e.Body != "abc" || e.Header["Content-Type"] != "text/plain" {
		t.Errorf("unexpected raw upload echo %+v (%v)", e, err)
	}
}

func TestUploadWithError(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPut, "/files/:name", func(c *gin.Context) {
		c.JSON(http.StatusRequestEntityTooLarge, testAPIError{Error: "too_large", Message: c.Param("name")})
	})
	svc := newTestService(t, srv)

	route := Route{Verb: MethodPut, BaseURL: srv.URL(), Endpoint: "files/big.bin"}
	_, err := UploadWithError[testModel, testAPIError](t.Context(), svc, route, BytesPayload(make([]byte, 1024), ""))
	m, ok := ClientModel[testAPIError](err)
	if !ok || m.Error != "too_large" || m.Message != "big.bin" {
		t.Fatalf("expected client model, got %v", err)
	}

	rec, _ := srv.LastRequest()
	if len(rec.Body) != 1024 {
		t.Errorf("payload not sent: %d bytes", len(rec.Body))
	}
}

func TestUpload_EmptyPayload(t *testing.T) {
	var got []byte
	exec := ExecutorFunc(func(_ context.Context, _ *TransportRequest, payload []byte) (*TransportResponse, error) {
		got = payload
		return &TransportResponse{StatusCode: 204}, nil
	})
	svc := NewService(exec, Settings{})
	if _, err := svc.UploadRaw(t.Context(), staticRoute(), Payload{}); err != nil {
		t.Fatalf("UploadRaw: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil payload, got %v", got)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	exec := ExecutorFunc(func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		if calls.Add(1) < 3 {
			return &TransportResponse{StatusCode: 503}, nil
		}
		return &TransportResponse{StatusCode: 200, Body: []byte(`{"name":"ok"}`)}, nil
	})
	svc := NewService(exec, Settings{})

	cfg := resilience.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond, RetryIf: IsRetryable}
	got, err := resilience.Retry(t.Context(), cfg, func() (testModel, error) {
		return Fetch[testModel](t.Context(), svc, staticRoute())
	})
	if err != nil || got.Name != "ok" {
		t.Fatalf("got %+v, %v", got, err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}

	calls.Store(0)
	client := NewService(staticExecutor(400, ""), Settings{})
	_, err = resilience.Retry(t.Context(), cfg, func() (testModel, error) {
		calls.Add(1)
		return Fetch[testModel](t.Context(), client, staticRoute())
	})
	if !IsClientData(err) || calls.Load() != 1 {
		t.Errorf("client errors must not be retried: %v after %d calls", err, calls.Load())
	}
}

func TestDebugTrace(t *testing.T) {
	var got []Exchange
	rec := DebugLoggerFunc(func(x Exchange) { got = append(got, x) })

	svc := NewService(staticExecutor(200, `{}`), Settings{Debug: true}, WithDebugLogger(rec))
	if _, err := svc.FetchRaw(t.Context(), staticRoute()); err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one exchange, got %d", len(got))
	}
	x := got[0]
	if x.ID == "" || x.Request == nil || x.Response == nil || x.Response.StatusCode != 200 {
		t.Errorf("incomplete exchange %+v", x)
	}

	quiet := NewService(staticExecutor(200, `{}`), Settings{Debug: false}, WithDebugLogger(rec))
	if _, err := quiet.FetchRaw(t.Context(), staticRoute()); err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if len(got) != 1 {
		t.Error("trace must be silent when debug is off")
	}
}

func TestDebugTrace_PanicContained(t *testing.T) {
	boom := DebugLoggerFunc(func(Exchange) { panic("logger broke") })
	svc := NewService(staticExecutor(200, `{"name":"fine"}`), Settings{Debug: true}, WithDebugLogger(boom))

	got, err := Fetch[testModel](t.Context(), svc, staticRoute())
	if err != nil || got.Name != "fine" {
		t.Fatalf("a panicking trace must not affect the result: %+v %v", got, err)
	}
}

func TestDebugTrace_OnlyCompletedExchanges(t *testing.T) {
	var got []Exchange
	rec := DebugLoggerFunc(func(x Exchange) { got = append(got, x) })

	failing := ExecutorFunc(func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		return nil, errors.New("connection refused")
	})
	svc := NewService(failing, Settings{Debug: true}, WithDebugLogger(rec))
	if _, err := svc.FetchRaw(t.Context(), staticRoute()); !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if _, err := svc.UploadRaw(t.Context(), staticRoute(), BytesPayload([]byte("x"), "")); !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	empty := ExecutorFunc(func(context.Context, *TransportRequest, []byte) (*TransportResponse, error) {
		return nil, nil
	})
	if _, err := NewService(empty, Settings{Debug: true}, WithDebugLogger(rec)).FetchRaw(t.Context(), staticRoute()); !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("failed exchanges must not be traced, got %d", len(got))
	}

	svc = NewService(staticExecutor(503, ""), Settings{Debug: true}, WithDebugLogger(rec))
	if _, err := svc.FetchRaw(t.Context(), staticRoute()); !IsServerError(err) {
		t.Fatalf("expected server error, got %v", err)
	}
	if len(got) != 1 || got[0].Response.StatusCode != 503 {
		t.Errorf("a received response is traced whatever its status: %+v", got)
	}
}

func TestDebugTrace_MasksCredentials(t *testing.T) {
	var sent, traced *TransportRequest
	exec := ExecutorFunc(func(_ context.Context, req *TransportRequest, _ []byte) (*TransportResponse, error) {
		sent = req
		return &TransportResponse{StatusCode: 200}, nil
	})
	rec := DebugLoggerFunc(func(x Exchange) { traced = x.Request })
	settings := Settings{Debug: true, Auth: APIKeyAuthQuery("key-456", "tenant_key")}
	svc := NewService(exec, settings, WithDebugLogger(rec))

	if _, err := svc.FetchRaw(t.Context(), staticRoute()); err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if got := sent.URL.Query().Get("tenant_key"); got != "key-456" {
		t.Errorf("executor must receive the real key, got %q", got)
	}
	if got := traced.URL.Query().Get("tenant_key"); got != redactedValue {
		t.Errorf("trace must receive the masked key, got %q", got)
	}
}

func TestNew(t *testing.T) {
	svc, err := New(Settings{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := svc.Settings()
	if s.Timeout != DefaultTimeout || s.Encoding.Array != param.ArrayBrackets {
		t.Errorf("defaults not applied: %+v", s)
	}
	if _, ok := svc.Executor().(*HTTPExecutor); !ok {
		t.Errorf("expected HTTPExecutor, got %T", svc.Executor())
	}

	_, err = New(Settings{Auth: &AuthConfig{Type: AuthBearer}})
	if err == nil {
		t.Error("expected invalid auth to fail")
	}
	_, err = New(Settings{Encoding: param.Policy{Array: "commas"}})
	if err == nil {
		t.Error("expected invalid encoding to fail")
	}
}

func TestService_ConcurrentUse(t *testing.T) {
	srv := testutil.NewServer(t)
	svc := newTestService(t, srv)

	const n = 20
	errs := make(chan error, n)
	for i := range n {
		go func() {
			route := Route{BaseURL: srv.URL(), Endpoint: "echo", Query: param.Parameters{"i": param.Int(int64(i))}}
			_, err := Fetch[testutil.Echo](t.Context(), svc, route)
			errs <- err
		}()
	}
	for range n {
		if err := <-errs; err != nil {
			t.Errorf("concurrent fetch: %v", err)
		}
	}
	if srv.Count() != n {
		t.Errorf("expected %d requests, got %d", n, srv.Count())
	}
}
