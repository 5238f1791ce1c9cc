package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/flagdemo/internal/api"
	"github.com/TimurManjosov/flagdemo/internal/features"
	"github.com/TimurManjosov/flagdemo/internal/targeting"
)

// StubEvaluator is a deterministic in-memory flag client for tests.
// Set Err to simulate an unreachable provider with a cold cache.
type StubEvaluator struct {
	Bools   map[string]bool
	Strings map[string]string
	Err     error
}

func (s *StubEvaluator) BoolValue(key string, defaultValue bool, _ targeting.Context) (bool, error) {
	if s.Err != nil {
		return defaultValue, s.Err
	}
	if v, ok := s.Bools[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (s *StubEvaluator) StringValue(key string, defaultValue string, _ targeting.Context) (string, error) {
	if s.Err != nil {
		return defaultValue, s.Err
	}
	if v, ok := s.Strings[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

// NewTestServer creates an API server backed by stub flag clients for both
// projects. Rate limiting is disabled and logs are discarded.
func NewTestServer(t *testing.T, userFlags, paymentFlags *StubEvaluator) *api.Server {
	t.Helper()
	if userFlags == nil {
		userFlags = &StubEvaluator{}
	}
	if paymentFlags == nil {
		paymentFlags = &StubEvaluator{}
	}
	svc := features.NewService(map[string]features.Evaluator{
		features.ProjectUserManagement: userFlags,
		features.ProjectPayment:        paymentFlags,
	})
	return api.NewServer(svc, zerolog.Nop(), 0)
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
