package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is returned when a required input is empty.
	ErrMissingParameter = errors.New("billing: missing parameter")

	// ErrProviderLookup marks failures retrieving sessions or subscriptions
	// from the payment provider.
	ErrProviderLookup = errors.New("billing: provider lookup failed")

	// ErrPersistence marks failures writing customer/subscription state.
	ErrPersistence = errors.New("billing: persistence failed")
)

// MissingParameterError names the absent input.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s is required", e.Name)
}

func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }

// ProviderLookupError carries the provider failure for a single lookup.
type ProviderLookupError struct {
	Op  string
	ID  string
	Err error
}

func (e *ProviderLookupError) Error() string {
	return e.Err.Error()
}

func (e *ProviderLookupError) Unwrap() []error { return []error{ErrProviderLookup, e.Err} }

// PersistenceError carries the store failure for a subscription event.
type PersistenceError struct {
	SubscriptionID string
	Err            error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
