package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

// RecordStore defines the read-back behaviour required from the store.
type RecordStore interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionRecord, error)
	GetCustomer(ctx context.Context, customerID string) (*models.CustomerRecord, error)
}

// GetSubscription creates an HTTP handler that returns a stored subscription by provider ID.
func GetSubscription(store RecordStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "subscription id is required"})
			return
		}

		sub, err := store.GetSubscription(r.Context(), id)
		if err != nil {
			log.Printf("GetSubscription: failed to get subscription %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to get subscription"})
			return
		}
		if sub == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "subscription not found"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"subscription": sub})
	}
}

// GetCustomer creates an HTTP handler that returns a stored customer by provider ID.
func GetCustomer(store RecordStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "customer id is required"})
			return
		}

		c, err := store.GetCustomer(r.Context(), id)
		if err != nil {
			log.Printf("GetCustomer: failed to get customer %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to get customer"})
			return
		}
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "customer not found"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"customer": c})
	}
}
