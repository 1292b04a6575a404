package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tryinterview/checkout-verifier/backend/internal/models"
)

const redisKeyPrefix = "checkout"

// RedisStore keeps customer and subscription records as JSON values keyed by
// their provider IDs.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a RedisStore from connection options.
func NewRedis(opts *redis.Options) *RedisStore {
	return &RedisStore{client: redis.NewClient(opts)}
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	return &RedisStore{client: client}, nil
}

// ApplySubscriptionEvent writes both records inside a MULTI/EXEC block so
// readers never see one without the other.
func (s *RedisStore) ApplySubscriptionEvent(ctx context.Context, event models.SubscriptionEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	customer, err := json.Marshal(event.Customer)
	if err != nil {
		return fmt.Errorf("store: encode customer: %w", err)
	}
	sub, err := json.Marshal(event.Subscription)
	if err != nil {
		return fmt.Errorf("store: encode subscription: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, customerKey(event.Customer.CustomerID), customer, 0)
		pipe.Set(ctx, subscriptionKey(event.Subscription.SubscriptionID), sub, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: apply subscription event: %w", err)
	}
	return nil
}

// GetSubscription returns the stored subscription, or nil when none exists.
func (s *RedisStore) GetSubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionRecord, error) {
	var sub models.SubscriptionRecord
	found, err := s.getJSON(ctx, subscriptionKey(subscriptionID), &sub)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

// GetCustomer returns the stored customer, or nil when none exists.
func (s *RedisStore) GetCustomer(ctx context.Context, customerID string) (*models.CustomerRecord, error) {
	var c models.CustomerRecord
	found, err := s.getJSON(ctx, customerKey(customerID), &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// Ping checks connectivity to the Redis server.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

func customerKey(id string) string {
	return redisKeyPrefix + ":customer:" + id
}

func subscriptionKey(id string) string {
	return redisKeyPrefix + ":subscription:" + id
}
