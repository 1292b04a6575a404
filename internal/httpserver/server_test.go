package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tryinterview/checkout-verifier/backend/internal/billing"
	"github.com/tryinterview/checkout-verifier/backend/internal/config"
	"github.com/tryinterview/checkout-verifier/backend/internal/handlers"
	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

type stubVerifier struct {
	calls int
}

func (s *stubVerifier) VerifyCheckout(ctx context.Context, sessionID, userID string) (billing.Result, error) {
	s.calls++
	return billing.Result{Outcome: billing.OutcomeNotCompleted, PaymentStatus: "unpaid"}, nil
}

type stubRecords struct{}

func (stubRecords) GetSubscription(ctx context.Context, id string) (*models.SubscriptionRecord, error) {
	return &models.SubscriptionRecord{SubscriptionID: id}, nil
}

func (stubRecords) GetCustomer(ctx context.Context, id string) (*models.CustomerRecord, error) {
	return nil, nil
}

func newTestServer(verifier *stubVerifier) *Server {
	cfg := config.Config{ServerAddress: ":0", AllowedOrigins: config.DefaultAllowedOrigins}
	return New(cfg, verifier, stubRecords{}, handlers.NewMetrics())
}

func TestHealthRoute(t *testing.T) {
	server := newTestServer(&stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestVerifyRouteAppliesCORS(t *testing.T) {
	verifier := &stubVerifier{}
	server := newTestServer(verifier)

	req := httptest.NewRequest(http.MethodGet, "/api/verify-payment?session_id=cs_1", nil)
	req.Header.Set("Origin", "https://unknown.example")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected fallback origin, got %q", got)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected 1 verification, got %d", verifier.calls)
	}
}

func TestPreflightDoesNotReachHandler(t *testing.T) {
	verifier := &stubVerifier{}
	server := newTestServer(verifier)

	req := httptest.NewRequest(http.MethodOptions, "/api/verify-payment", nil)
	req.Header.Set("Origin", "https://tryinterview.site")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if verifier.calls != 0 {
		t.Fatalf("expected preflight to skip verification, got %d calls", verifier.calls)
	}
}

func TestDeleteIsMethodNotAllowed(t *testing.T) {
	verifier := &stubVerifier{}
	server := newTestServer(verifier)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/verify-payment?session_id=cs_1", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
	if verifier.calls != 0 {
		t.Fatalf("expected no verification, got %d", verifier.calls)
	}
}

func TestMetricsRoute(t *testing.T) {
	server := newTestServer(&stubVerifier{})

	server.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/verify-payment?session_id=cs_1", nil))

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `checkout_verifications_total{outcome="not_completed"} 1`) {
		t.Fatalf("expected verification counter in metrics output:\n%s", body)
	}
	if !strings.Contains(body, `route="/api/verify-payment"`) {
		t.Fatalf("expected request metrics labelled by route:\n%s", body)
	}
}
