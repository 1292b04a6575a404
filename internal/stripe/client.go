package stripe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/subscription"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

// Client wraps the Stripe lookups needed to verify a checkout session.
type Client struct {
	sessions      session.Client
	subscriptions subscription.Client
}

// NewClient creates a Stripe client talking to the public Stripe API.
func NewClient(secretKey string) *Client {
	return NewClientWithURL(secretKey, "")
}

// NewClientWithURL creates a Stripe client against apiURL. An empty apiURL
// uses the default Stripe endpoint. Network retries are disabled.
func NewClientWithURL(secretKey, apiURL string) *Client {
	cfg := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{},
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelError},
	}
	if apiURL != "" {
		cfg.URL = stripeapi.String(apiURL)
	}
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, cfg)

	return &Client{
		sessions:      session.Client{B: backend, Key: secretKey},
		subscriptions: subscription.Client{B: backend, Key: secretKey},
	}
}

// GetSession retrieves a checkout session with its subscription and price expanded.
func (c *Client) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")
	params.AddExpand("subscription.items.data.price")

	s, err := c.sessions.Get(sessionID, params)
	if err != nil {
		if IsNotFound(err) {
			log.Printf("[stripe] checkout session %s not found", sessionID)
		}
		return models.Session{}, fmt.Errorf("stripe: retrieve checkout session %s: %w", sessionID, err)
	}

	return sessionFromAPI(s), nil
}

// GetSubscription retrieves a subscription by ID.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (models.Subscription, error) {
	params := &stripeapi.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.subscriptions.Get(subscriptionID, params)
	if err != nil {
		if IsNotFound(err) {
			log.Printf("[stripe] subscription %s not found", subscriptionID)
		}
		return models.Subscription{}, fmt.Errorf("stripe: retrieve subscription %s: %w", subscriptionID, err)
	}

	return subscriptionFromAPI(sub), nil
}

// IsNotFound reports whether err is a Stripe "resource missing" response.
func IsNotFound(err error) bool {
	var apiErr *stripeapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusNotFound || apiErr.Code == stripeapi.ErrorCodeResourceMissing
	}
	return false
}

func sessionFromAPI(s *stripeapi.CheckoutSession) models.Session {
	out := models.Session{
		ID:                s.ID,
		PaymentStatus:     string(s.PaymentStatus),
		CustomerEmail:     s.CustomerEmail,
		ClientReferenceID: s.ClientReferenceID,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.CustomerDetails != nil {
		out.CustomerDetails = models.CustomerDetails{
			Email: s.CustomerDetails.Email,
			Name:  s.CustomerDetails.Name,
		}
	}
	if s.Subscription != nil {
		out.Subscription.ID = s.Subscription.ID
		// An unexpanded reference decodes to an object carrying only its ID.
		if s.Subscription.Object != "" || s.Subscription.Items != nil {
			sub := subscriptionFromAPI(s.Subscription)
			out.Subscription.Resolved = &sub
		}
	}
	return out
}

func subscriptionFromAPI(sub *stripeapi.Subscription) models.Subscription {
	out := models.Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Created:           sub.Created,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return out
	}

	item := sub.Items.Data[0]
	out.CurrentPeriodStart = item.CurrentPeriodStart
	out.CurrentPeriodEnd = item.CurrentPeriodEnd
	if item.Price != nil {
		out.PriceID = item.Price.ID
		out.UnitAmount = item.Price.UnitAmount
		out.Currency = string(item.Price.Currency)
		if item.Price.Recurring != nil {
			out.Interval = string(item.Price.Recurring.Interval)
		}
	}
	return out
}
