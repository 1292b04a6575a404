package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const expandedSessionJSON = `{
  "id": "cs_test_paid",
  "object": "checkout.session",
  "payment_status": "paid",
  "customer": "cus_123",
  "customer_email": "buyer@example.com",
  "customer_details": {"email": "details@example.com", "name": "Ada Buyer"},
  "client_reference_id": "user_42",
  "subscription": {
    "id": "sub_123",
    "object": "subscription",
    "status": "active",
    "customer": "cus_123",
    "cancel_at_period_end": true,
    "created": 1700000000,
    "items": {
      "object": "list",
      "data": [{
        "id": "si_1",
        "object": "subscription_item",
        "current_period_start": 1700000000,
        "current_period_end": 1702592000,
        "price": {
          "id": "price_pro",
          "object": "price",
          "unit_amount": 1999,
          "currency": "usd",
          "recurring": {"interval": "month"}
        }
      }]
    }
  }
}`

const unexpandedSessionJSON = `{
  "id": "cs_test_ref",
  "object": "checkout.session",
  "payment_status": "paid",
  "customer": "cus_123",
  "subscription": "sub_ref"
}`

const subscriptionJSON = `{
  "id": "sub_ref",
  "object": "subscription",
  "status": "trialing",
  "customer": "cus_123",
  "cancel_at_period_end": false,
  "items": {
    "object": "list",
    "data": [{
      "id": "si_2",
      "object": "subscription_item",
      "current_period_start": 1700000000,
      "current_period_end": 1731536000,
      "price": {"id": "price_year", "object": "price", "unit_amount": 9900, "currency": "eur", "recurring": {"interval": "year"}}
    }]
  }
}`

func newFakeStripe(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/checkout/sessions/cs_test_paid", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, expandedSessionJSON)
	})
	mux.HandleFunc("/v1/checkout/sessions/cs_test_ref", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, unexpandedSessionJSON)
	})
	mux.HandleFunc("/v1/subscriptions/sub_ref", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, subscriptionJSON)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session"}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGetSessionExpanded(t *testing.T) {
	srv, _ := newFakeStripe(t)
	client := NewClientWithURL("sk_test", srv.URL)

	s, err := client.GetSession(context.Background(), "cs_test_paid")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}

	if s.PaymentStatus != "paid" {
		t.Fatalf("expected payment status paid, got %q", s.PaymentStatus)
	}
	if s.CustomerID != "cus_123" || s.ClientReferenceID != "user_42" {
		t.Fatalf("unexpected session identity: %+v", s)
	}
	if s.CustomerDetails.Name != "Ada Buyer" || s.ContactEmail() != "buyer@example.com" {
		t.Fatalf("unexpected customer contact: %+v", s.CustomerDetails)
	}
	if !s.Subscription.IsResolved() {
		t.Fatal("expected expanded subscription to be resolved")
	}

	sub := s.Subscription.Resolved
	if sub.PriceID != "price_pro" || sub.UnitAmount != 1999 || sub.Currency != "usd" || sub.Interval != "month" {
		t.Fatalf("unexpected price fields: %+v", sub)
	}
	if !sub.CancelAtPeriodEnd || sub.CurrentPeriodStart != 1700000000 || sub.CurrentPeriodEnd != 1702592000 {
		t.Fatalf("unexpected period fields: %+v", sub)
	}
}

func TestGetSessionUnexpandedReference(t *testing.T) {
	srv, _ := newFakeStripe(t)
	client := NewClientWithURL("sk_test", srv.URL)

	s, err := client.GetSession(context.Background(), "cs_test_ref")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if s.Subscription.ID != "sub_ref" {
		t.Fatalf("expected subscription reference sub_ref, got %q", s.Subscription.ID)
	}
	if s.Subscription.IsResolved() {
		t.Fatal("expected unexpanded reference")
	}
}

func TestGetSubscription(t *testing.T) {
	srv, _ := newFakeStripe(t)
	client := NewClientWithURL("sk_test", srv.URL)

	sub, err := client.GetSubscription(context.Background(), "sub_ref")
	if err != nil {
		t.Fatalf("GetSubscription returned error: %v", err)
	}
	if sub.Status != "trialing" || sub.PriceID != "price_year" || sub.Interval != "year" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	srv, calls := newFakeStripe(t)
	client := NewClientWithURL("sk_test", srv.URL)

	_, err := client.GetSession(context.Background(), "cs_missing")
	if err == nil {
		t.Fatal("expected error for missing session")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected exactly one request without retries, got %d", *calls)
	}
}
