package billing

import (
	"context"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

// Result is what a caller of VerifyCheckout gets back. Subscription is nil
// when the payment is not complete or the checkout had no subscription.
type Result struct {
	Outcome       Outcome
	PaymentStatus string
	Subscription  *models.SubscriptionRecord
	Persisted     bool
}

// Service runs the verifier and, for paid subscription checkouts, the
// materializer.
type Service struct {
	verifier     *Verifier
	materializer *Materializer
}

// NewService wires a verifier and materializer around the given collaborators.
func NewService(provider Provider, catalog models.PlanCatalog, store EventStore) *Service {
	return &Service{
		verifier:     NewVerifier(provider),
		materializer: NewMaterializer(catalog, store),
	}
}

// NewServiceWith builds a Service from preconstructed components.
func NewServiceWith(verifier *Verifier, materializer *Materializer) *Service {
	return &Service{verifier: verifier, materializer: materializer}
}

// VerifyCheckout verifies sessionID and materializes its subscription when paid.
func (s *Service) VerifyCheckout(ctx context.Context, sessionID, userID string) (Result, error) {
	v, err := s.verifier.Verify(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Outcome:       v.Outcome,
		PaymentStatus: v.PaymentStatus,
	}
	if v.Outcome != OutcomeCompleted || v.Subscription == nil {
		return result, nil
	}

	m, err := s.materializer.Materialize(ctx, v.Session, *v.Subscription, userID)
	if err != nil {
		return result, err
	}

	record := m.Record
	result.Subscription = &record
	result.Persisted = m.Persisted
	return result, nil
}
