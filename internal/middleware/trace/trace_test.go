package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	plog "panini/internal/log"
)

type recordingObserver struct {
	method string
	code   int
	calls  int
}

func (o *recordingObserver) ObserveHTTP(method string, code int, _ time.Duration) {
	o.method, o.code = method, code
	o.calls++
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := plog.New(plog.Config{Format: plog.FormatJSON, Output: &buf})
	obs := &recordingObserver{}
	m := NewMiddleware(logger, func(*http.Request) string { return "1.2.3.4" }, obs)

	var seenID string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		plog.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments", nil))

	if !strings.HasPrefix(seenID, "req_") || rec.Header().Get("X-Request-ID") != seenID {
		t.Fatalf("request id not propagated: %q / %q", seenID, rec.Header().Get("X-Request-ID"))
	}
	if obs.calls != 1 || obs.method != http.MethodPost || obs.code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected observation %+v", obs)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"inside handler"`) || strings.Count(out, seenID) < 2 {
		t.Fatalf("expected handler log and access log tagged with request id, got %s", out)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(plog.New(plog.Config{Output: &bytes.Buffer{}}), nil, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "upstream-1" {
		t.Fatalf("expected upstream id, got %q", rec.Header().Get("X-Request-ID"))
	}
}
