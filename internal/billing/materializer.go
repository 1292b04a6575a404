package billing

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

// EventStore persists the customer/subscription pair of a verified checkout.
// Implementations decide how the two records are written atomically.
type EventStore interface {
	ApplySubscriptionEvent(ctx context.Context, event models.SubscriptionEvent) error
}

// Materialized is the outcome of Materialize. Persisted is false when no user
// ID could be resolved and the store was not touched.
type Materialized struct {
	Record    models.SubscriptionRecord
	Persisted bool
}

// Materializer turns a resolved provider subscription into a normalized
// record and writes it to the store.
type Materializer struct {
	catalog models.PlanCatalog
	store   EventStore
	now     func() time.Time
}

// NewMaterializer creates a Materializer with an injected plan catalog.
func NewMaterializer(catalog models.PlanCatalog, store EventStore) *Materializer {
	return &Materializer{
		catalog: catalog,
		store:   store,
		now:     time.Now,
	}
}

// WithClock overrides the clock used when the provider omits a creation time.
func (m *Materializer) WithClock(now func() time.Time) *Materializer {
	m.now = now
	return m
}

// Materialize derives the subscription record for a paid session. The user ID
// comes from the session's client reference, falling back to requestUserID;
// when neither is set the record is returned without being persisted.
func (m *Materializer) Materialize(ctx context.Context, session models.Session, sub models.Subscription, requestUserID string) (Materialized, error) {
	userID := firstNonEmpty(session.ClientReferenceID, strings.TrimSpace(requestUserID))
	customerID := firstNonEmpty(session.CustomerID, sub.CustomerID)
	createdAt := m.createdAt(sub)

	record := models.SubscriptionRecord{
		SubscriptionID:     sub.ID,
		CustomerID:         customerID,
		UserID:             userID,
		Status:             sub.Status,
		PriceID:            sub.PriceID,
		PlanName:           m.catalog.Lookup(sub.PriceID),
		CurrentPeriodStart: epochToTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   epochToTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		Amount:             minorToMajor(sub.UnitAmount),
		Currency:           strings.ToUpper(sub.Currency),
		Interval:           sub.Interval,
		CreatedAt:          createdAt,
	}

	result := Materialized{Record: record}
	if userID == "" {
		log.Printf("[verify] subscription %s: no user id on session or request, skipping persistence", sub.ID)
		return result, nil
	}
	if sub.ID == "" || customerID == "" {
		log.Printf("[verify] subscription %q customer %q: missing provider identifier, skipping persistence", sub.ID, customerID)
		return result, nil
	}

	event := models.SubscriptionEvent{
		Customer: models.CustomerRecord{
			CustomerID:     customerID,
			Email:          session.ContactEmail(),
			UserID:         userID,
			Name:           session.CustomerDetails.Name,
			SubscriptionID: sub.ID,
			Status:         models.CustomerStatusActive,
			CreatedAt:      createdAt,
		},
		Subscription: record,
	}

	if err := m.store.ApplySubscriptionEvent(ctx, event); err != nil {
		return result, &PersistenceError{SubscriptionID: sub.ID, Err: err}
	}

	log.Printf("[verify] subscription saved for user %s: plan=%s status=%s", userID, record.PlanName, record.Status)
	result.Persisted = true
	return result, nil
}

func (m *Materializer) createdAt(sub models.Subscription) time.Time {
	if sub.Created > 0 {
		return epochToTime(sub.Created)
	}
	return m.now().UTC()
}

func epochToTime(seconds int64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}

// minorToMajor converts an amount in minor currency units (cents) to major units.
func minorToMajor(amount int64) float64 {
	return float64(amount) / 100
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
