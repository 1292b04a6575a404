package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

var testOrigins = []string{"http://localhost:3000", "https://tryinterview.site"}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowedOrigin(t *testing.T) {
	var called bool
	h := CORS(testOrigins)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/verify-payment", nil)
	req.Header.Set("Origin", "https://tryinterview.site")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://tryinterview.site" {
		t.Fatalf("expected echoed origin, got %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials header")
	}
	if !called {
		t.Fatal("expected next handler to run")
	}
}

func TestCORSUnknownOriginFallsBack(t *testing.T) {
	var called bool
	h := CORS(testOrigins)(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/api/verify-payment", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected fallback to first allowed origin, got %q", got)
	}
}

func TestCORSNoOrigin(t *testing.T) {
	var called bool
	h := CORS(testOrigins)(okHandler(&called))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/verify-payment", nil))

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard without origin, got %q", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	var called bool
	h := CORS(testOrigins)(okHandler(&called))

	req := httptest.NewRequest(http.MethodOptions, "/api/verify-payment", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rr.Code)
	}
	if called {
		t.Fatal("preflight must not reach the next handler")
	}
	if rr.Header().Get("Access-Control-Max-Age") != "86400" {
		t.Fatalf("unexpected max age %q", rr.Header().Get("Access-Control-Max-Age"))
	}
	if rr.Header().Get("Access-Control-Allow-Headers") != corsAllowHeaders {
		t.Fatalf("unexpected allow headers %q", rr.Header().Get("Access-Control-Allow-Headers"))
	}
}

type observation struct {
	method, route string
	status        int
}

type stubRecorder struct {
	observations []observation
}

func (s *stubRecorder) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	s.observations = append(s.observations, observation{method: method, route: route, status: statusCode})
}

func TestRequestTrackerRecordsRoutePattern(t *testing.T) {
	rec := &stubRecorder{}
	router := chi.NewRouter()
	router.Use(NewRequestTracker(rec).Middleware())
	router.Get("/api/subscriptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/subscriptions/sub_123", nil))

	if len(rec.observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(rec.observations))
	}
	got := rec.observations[0]
	if got.route != "/api/subscriptions/{id}" || got.status != http.StatusNotFound || got.method != http.MethodGet {
		t.Fatalf("unexpected observation: %+v", got)
	}
}
