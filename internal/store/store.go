package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

const (
	customersTable     = "customers"
	subscriptionsTable = "subscriptions"
)

// Backend is the persistence collaborator used by the verification flow and
// the read-back endpoints.
type Backend interface {
	ApplySubscriptionEvent(ctx context.Context, event models.SubscriptionEvent) error
	GetSubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionRecord, error)
	GetCustomer(ctx context.Context, customerID string) (*models.CustomerRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// Store provides Postgres-backed accessors for customer and subscription records.
type Store struct {
	db *sql.DB
}

// New creates a Store using the provided sql.DB connection.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &Store{db: db}, nil
}

// ApplySubscriptionEvent upserts the customer and its subscription in one
// transaction. Both rows are fully overwritten from the event.
func (s *Store) ApplySubscriptionEvent(ctx context.Context, event models.SubscriptionEvent) error {
	if s == nil || s.db == nil {
		return errors.New("store: db cannot be nil")
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin subscription event tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	c := event.Customer
	if _, err := tx.ExecContext(ctx, `
INSERT INTO customers (
	stripe_customer_id, email, user_id, name, stripe_subscription_id, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (stripe_customer_id) DO UPDATE SET
	email = EXCLUDED.email,
	user_id = EXCLUDED.user_id,
	name = EXCLUDED.name,
	stripe_subscription_id = EXCLUDED.stripe_subscription_id,
	status = EXCLUDED.status,
	created_at = EXCLUDED.created_at,
	updated_at = now()`,
		c.CustomerID,
		c.Email,
		c.UserID,
		c.Name,
		c.SubscriptionID,
		c.Status,
		c.CreatedAt,
	); err != nil {
		return fmt.Errorf("store: upsert customer: %w", err)
	}

	sub := event.Subscription
	if _, err := tx.ExecContext(ctx, `
INSERT INTO subscriptions (
	stripe_subscription_id, stripe_customer_id, user_id, status, stripe_price_id, plan_name,
	current_period_start, current_period_end, cancel_at_period_end, amount, currency,
	billing_interval, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (stripe_subscription_id) DO UPDATE SET
	stripe_customer_id = EXCLUDED.stripe_customer_id,
	user_id = EXCLUDED.user_id,
	status = EXCLUDED.status,
	stripe_price_id = EXCLUDED.stripe_price_id,
	plan_name = EXCLUDED.plan_name,
	current_period_start = EXCLUDED.current_period_start,
	current_period_end = EXCLUDED.current_period_end,
	cancel_at_period_end = EXCLUDED.cancel_at_period_end,
	amount = EXCLUDED.amount,
	currency = EXCLUDED.currency,
	billing_interval = EXCLUDED.billing_interval,
	created_at = EXCLUDED.created_at,
	updated_at = now()`,
		sub.SubscriptionID,
		sub.CustomerID,
		sub.UserID,
		sub.Status,
		sub.PriceID,
		sub.PlanName,
		nullTime(sub.CurrentPeriodStart),
		nullTime(sub.CurrentPeriodEnd),
		sub.CancelAtPeriodEnd,
		sub.Amount,
		sub.Currency,
		sub.Interval,
		sub.CreatedAt,
	); err != nil {
		return fmt.Errorf("store: upsert subscription: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit subscription event tx: %w", err)
	}

	return nil
}

// GetSubscription returns the stored subscription, or nil when none exists.
func (s *Store) GetSubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionRecord, error) {
	query := fmt.Sprintf(`
SELECT
	stripe_subscription_id, stripe_customer_id, user_id, status, stripe_price_id, plan_name,
	current_period_start, current_period_end, cancel_at_period_end, amount, currency,
	billing_interval, created_at
FROM %s
WHERE stripe_subscription_id = $1
`, subscriptionsTable)

	var (
		sub         models.SubscriptionRecord
		periodStart sql.NullTime
		periodEnd   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, subscriptionID).Scan(
		&sub.SubscriptionID,
		&sub.CustomerID,
		&sub.UserID,
		&sub.Status,
		&sub.PriceID,
		&sub.PlanName,
		&periodStart,
		&periodEnd,
		&sub.CancelAtPeriodEnd,
		&sub.Amount,
		&sub.Currency,
		&sub.Interval,
		&sub.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get subscription: %w", err)
	}

	// NULL periods scan to the zero time.
	sub.CurrentPeriodStart = periodStart.Time.UTC()
	sub.CurrentPeriodEnd = periodEnd.Time.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()

	return &sub, nil
}

// GetCustomer returns the stored customer, or nil when none exists.
func (s *Store) GetCustomer(ctx context.Context, customerID string) (*models.CustomerRecord, error) {
	query := fmt.Sprintf(`
SELECT stripe_customer_id, email, user_id, name, stripe_subscription_id, status, created_at
FROM %s
WHERE stripe_customer_id = $1
`, customersTable)

	var c models.CustomerRecord
	err := s.db.QueryRowContext(ctx, query, customerID).Scan(
		&c.CustomerID,
		&c.Email,
		&c.UserID,
		&c.Name,
		&c.SubscriptionID,
		&c.Status,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get customer: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func validateEvent(event models.SubscriptionEvent) error {
	if event.Customer.CustomerID == "" {
		return errors.New("store: customer id is required")
	}
	if event.Subscription.SubscriptionID == "" {
		return errors.New("store: subscription id is required")
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
