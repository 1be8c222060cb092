// Package store defines the persistence contracts of the review status
// engine and the error taxonomy shared by their implementations.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hanzideck/hanzideck-api/internal/domain"
)

// ReviewStore is the narrow contract to the remote source of truth for
// per-user review state. The store transports already-decided state: it
// never computes scheduling, and it never raises validation errors,
// since outcomes are validated before they reach this layer. Network and
// storage failures are the only errors it returns.
// Version: 1.0
type ReviewStore interface {
	// FetchStatuses retrieves the review records a user has for the given
	// card IDs. Cards with no record are simply absent from the result;
	// callers synthesize defaults for them. The returned map is a
	// snapshot and must not be mutated by callers.
	FetchStatuses(ctx context.Context, userID uuid.UUID, cardIDs []string) (map[string]domain.ReviewRecord, error)

	// PersistBatch writes a batch of already-scheduled updates in arrival
	// order within a single transaction. Later updates for the same card
	// overwrite earlier ones, even when they share a timestamp. Updates
	// carry absolute state, so redelivering a batch recomputed from the
	// same base does not double-count a review.
	PersistBatch(ctx context.Context, userID uuid.UUID, updates []domain.ComputedUpdate) error
}
