package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store.
	ErrNotFound = errors.New("entity not found")

	// ErrTransient marks failures that are expected to succeed on retry:
	// network errors, timeouts, connection loss, serialization conflicts.
	// The write queue retries these with backoff and never surfaces them
	// to the caller.
	ErrTransient = errors.New("transient store failure")

	// ErrPermanent marks failures that will not succeed on retry, such as
	// a malformed batch rejected by the store. After a bounded number of
	// attempts the write queue drops the batch and surfaces the loss to
	// observability.
	ErrPermanent = errors.New("permanent store failure")
)

// Transient wraps err so that IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// Permanent wraps err so that IsTransient reports false for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPermanent, err)
}

// IsTransient reports whether err should be retried. Context deadline
// expiry on a persistence call is treated identically to a network
// failure. Unclassified errors default to transient so the queue keeps
// its at-least-once guarantee; only explicitly permanent errors give up.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrPermanent)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "review_record")
	Operation string // The operation that failed (e.g., "fetch", "persist")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity,
// operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
