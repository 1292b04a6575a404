package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tryinterview/checkout-verifier/backend/internal/billing"
)

const maxVerifyBodyBytes = 1 << 16

// VerificationService verifies a checkout session and materializes its subscription.
type VerificationService interface {
	VerifyCheckout(ctx context.Context, sessionID, userID string) (billing.Result, error)
}

type verifyPaymentPayload struct {
	SessionID string `json:"session_id" validate:"required,max=255"`
	UserID    string `json:"userId" validate:"max=255"`
}

var validate = validator.New()

// VerifyPayment creates an HTTP handler that confirms a checkout session was
// paid and records the resulting subscription. session_id and userId are read
// from the query string, falling back to a JSON body.
func VerifyPayment(service VerificationService, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
			return
		}

		payload, err := readVerifyPayload(r)
		if err != nil {
			log.Printf("VerifyPayment: invalid JSON payload: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON payload"})
			return
		}

		if err := validate.Struct(payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": validationMessage(err)})
			return
		}

		result, err := service.VerifyCheckout(r.Context(), payload.SessionID, payload.UserID)
		if err != nil {
			if errors.Is(err, billing.ErrMissingParameter) {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}

			log.Printf("VerifyPayment: session %s: %v", payload.SessionID, err)
			metrics.RecordVerification(outcomeError)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "Failed to verify payment",
				"message": err.Error(),
			})
			return
		}

		if result.Outcome == billing.OutcomeNotCompleted {
			metrics.RecordVerification(outcomeNotCompleted)
			writeJSON(w, http.StatusOK, map[string]any{
				"success":       true,
				"paymentStatus": result.PaymentStatus,
				"status":        result.PaymentStatus,
				"message":       "Payment not completed yet",
			})
			return
		}

		if result.Persisted {
			metrics.RecordVerification(outcomePersisted)
		} else {
			metrics.RecordVerification(outcomeCompleted)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"paymentStatus": result.PaymentStatus,
			"subscription":  result.Subscription,
			"message":       "Payment verified successfully",
		})
	}
}

func readVerifyPayload(r *http.Request) (verifyPaymentPayload, error) {
	query := r.URL.Query()
	payload := verifyPaymentPayload{
		SessionID: strings.TrimSpace(query.Get("session_id")),
		UserID:    strings.TrimSpace(query.Get("userId")),
	}

	if r.Method != http.MethodPost || r.Body == nil {
		return payload, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxVerifyBodyBytes))
	if err != nil {
		return payload, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return payload, nil
	}

	var fromBody verifyPaymentPayload
	if err := json.Unmarshal(body, &fromBody); err != nil {
		return payload, err
	}
	if payload.SessionID == "" {
		payload.SessionID = strings.TrimSpace(fromBody.SessionID)
	}
	if payload.UserID == "" {
		payload.UserID = strings.TrimSpace(fromBody.UserID)
	}
	return payload, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := "session_id"
		if fe.StructField() == "UserID" {
			field = "userId"
		}
		if fe.Tag() == "required" {
			return field + " is required"
		}
		return field + " is invalid"
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
