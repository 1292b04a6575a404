package billing

import (
	"context"
	"log"
	"strings"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

// Provider is the read-only payment provider collaborator.
type Provider interface {
	GetSession(ctx context.Context, sessionID string) (models.Session, error)
	GetSubscription(ctx context.Context, subscriptionID string) (models.Subscription, error)
}

// Outcome classifies a verified session.
type Outcome string

const (
	OutcomeNotCompleted Outcome = "not-completed"
	OutcomeCompleted    Outcome = "completed"
)

// Verification is the result of checking a checkout session. Subscription is
// nil for unpaid sessions and for paid sessions without a subscription.
type Verification struct {
	Outcome       Outcome
	PaymentStatus string
	Session       models.Session
	Subscription  *models.Subscription
}

// Verifier confirms whether a checkout session was paid and resolves its
// subscription.
type Verifier struct {
	provider Provider
}

// NewVerifier creates a Verifier backed by provider.
func NewVerifier(provider Provider) *Verifier {
	return &Verifier{provider: provider}
}

// Verify looks up sessionID and classifies its payment. Unpaid sessions are a
// normal outcome, not an error.
func (v *Verifier) Verify(ctx context.Context, sessionID string) (Verification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Verification{}, &MissingParameterError{Name: "session_id"}
	}

	session, err := v.provider.GetSession(ctx, sessionID)
	if err != nil {
		return Verification{}, &ProviderLookupError{Op: "retrieve session", ID: sessionID, Err: err}
	}

	log.Printf("[verify] session %s: payment_status=%s customer=%s subscription=%s",
		session.ID, session.PaymentStatus, session.CustomerID, session.Subscription.ID)

	result := Verification{
		PaymentStatus: session.PaymentStatus,
		Session:       session,
	}

	if session.PaymentStatus != models.PaymentStatusPaid {
		result.Outcome = OutcomeNotCompleted
		return result, nil
	}

	result.Outcome = OutcomeCompleted
	if session.Subscription.IsZero() {
		return result, nil
	}

	sub, err := v.resolve(ctx, session.Subscription)
	if err != nil {
		return Verification{}, err
	}
	result.Subscription = sub
	result.Session.Subscription = models.SubscriptionRef{ID: sub.ID, Resolved: sub}

	return result, nil
}

func (v *Verifier) resolve(ctx context.Context, ref models.SubscriptionRef) (*models.Subscription, error) {
	if ref.IsResolved() {
		return ref.Resolved, nil
	}

	sub, err := v.provider.GetSubscription(ctx, ref.ID)
	if err != nil {
		return nil, &ProviderLookupError{Op: "retrieve subscription", ID: ref.ID, Err: err}
	}
	return &sub, nil
}
