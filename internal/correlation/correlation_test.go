package correlation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// syncBuffer lets concurrent request loggers share one capture buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

func TestMiddleware_EchoesInboundHeader(t *testing.T) {
	var captured string
	handler := Middleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1", nil)
	req.Header.Set(Header, "corr-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if captured != "corr-123" {
		t.Errorf("Expected context id 'corr-123', got %q", captured)
	}
	if got := rr.Header().Get(Header); got != "corr-123" {
		t.Errorf("Expected response header 'corr-123', got %q", got)
	}
}

func TestMiddleware_GeneratesWhenAbsentOrBlank(t *testing.T) {
	handler := Middleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ids := make(map[string]bool)
	for _, headerValue := range []string{"", "   ", ""} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if headerValue != "" {
			req.Header.Set(Header, headerValue)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		id := rr.Header().Get(Header)
		if id == "" || strings.TrimSpace(id) == "" {
			t.Fatal("Expected a generated, non-empty correlation id")
		}
		if ids[id] {
			t.Fatalf("Correlation id %q reused", id)
		}
		ids[id] = true
	}
}

func TestMiddleware_RequestLoggerCarriesContext(t *testing.T) {
	buf := &syncBuffer{}
	base := zerolog.New(buf)

	handler := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1?verbose=1", nil)
	req.Header.Set(Header, "corr-xyz")
	req.Header.Set("X-User-ID", "u1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := buf.Lines()
	if len(lines) != 2 {
		t.Fatalf("Expected handler line + access line, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Log line is not JSON: %v", err)
		}
		if entry["correlation_id"] != "corr-xyz" {
			t.Errorf("Expected correlation_id 'corr-xyz' on %q", line)
		}
		if entry["method"] != http.MethodGet {
			t.Errorf("Expected method field on %q", line)
		}
		if entry["uri"] != "/api/users/u1?verbose=1" {
			t.Errorf("Expected uri field on %q", line)
		}
		if entry["user_id"] != "u1" {
			t.Errorf("Expected user_id field on %q", line)
		}
	}
}

func TestMiddleware_AccessLogEmittedOnPanic(t *testing.T) {
	buf := &syncBuffer{}
	base := zerolog.New(buf)

	handler := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	func() {
		defer func() { _ = recover() }()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	lines := buf.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], "request completed") {
		t.Errorf("Expected the completion line even when the handler panics, got %v", lines)
	}
}

func TestMiddleware_NoLeakAcrossConcurrentRequests(t *testing.T) {
	buf := &syncBuffer{}
	base := zerolog.New(buf)

	handler := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The handler tags its line with its own correlation id; the
		// middleware-derived logger must agree on every line.
		zerolog.Ctx(r.Context()).Info().Str("handler_cid", FromContext(r.Context())).Msg("handled")
	}))

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}()
	}
	wg.Wait()

	handled := 0
	for _, line := range buf.Lines() {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Log line is not JSON: %v", err)
		}
		if entry["handler_cid"] == nil {
			continue // access log line
		}
		handled++
		if entry["handler_cid"] != entry["correlation_id"] {
			t.Errorf("Logger context leaked: handler saw %v, line carries %v",
				entry["handler_cid"], entry["correlation_id"])
		}
	}
	if handled != n {
		t.Errorf("Expected %d handler lines, got %d", n, handled)
	}
}

func TestFromContext_OutsideRequest(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("Expected empty id outside a request, got %q", got)
	}
}
