package models

import "time"

// PaymentStatusPaid is the only checkout payment status that counts as a completed payment.
const PaymentStatusPaid = "paid"

// CustomerStatusActive is written on every customer upsert.
const CustomerStatusActive = "active"

// Session is the read-only view of a provider checkout session.
type Session struct {
	ID                string
	PaymentStatus     string
	CustomerID        string
	CustomerEmail     string
	CustomerDetails   CustomerDetails
	ClientReferenceID string
	Subscription      SubscriptionRef
}

// CustomerDetails holds the contact fields the customer entered during checkout.
type CustomerDetails struct {
	Email string
	Name  string
}

// ContactEmail prefers the session's top-level customer email over the one
// collected in customer details.
func (s Session) ContactEmail() string {
	if s.CustomerEmail != "" {
		return s.CustomerEmail
	}
	return s.CustomerDetails.Email
}

// SubscriptionRef links a session to its subscription. A zero value means the
// session has no subscription (one-time payment). A non-empty ID with a nil
// Resolved is an unexpanded reference that still has to be fetched.
type SubscriptionRef struct {
	ID       string
	Resolved *Subscription
}

// IsZero reports whether the session carries no subscription link at all.
func (r SubscriptionRef) IsZero() bool {
	return r.ID == "" && r.Resolved == nil
}

// IsResolved reports whether the full subscription object is available.
func (r SubscriptionRef) IsResolved() bool {
	return r.Resolved != nil
}

// Subscription is the provider's view of a recurring billing agreement,
// flattened to its first subscription item.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CancelAtPeriodEnd  bool
	Created            int64
	PriceID            string
	UnitAmount         int64
	Currency           string
	Interval           string
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
}

// SubscriptionRecord is the normalized, persistence-ready subscription.
type SubscriptionRecord struct {
	SubscriptionID     string    `json:"subscriptionId"`
	CustomerID         string    `json:"customerId"`
	UserID             string    `json:"userId"`
	Status             string    `json:"status"`
	PriceID            string    `json:"priceId"`
	PlanName           string    `json:"planName"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool      `json:"cancelAtPeriodEnd"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	Interval           string    `json:"interval"`
	CreatedAt          time.Time `json:"createdAt"`
}

// CustomerRecord is the persisted customer that owns a subscription.
type CustomerRecord struct {
	CustomerID     string    `json:"customerId"`
	Email          string    `json:"email"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	SubscriptionID string    `json:"subscriptionId"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SubscriptionEvent is the single logical write produced by a verified
// checkout: the customer and the subscription it owns.
type SubscriptionEvent struct {
	Customer     CustomerRecord
	Subscription SubscriptionRecord
}
