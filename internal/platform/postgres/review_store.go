// Package postgres contains the PostgreSQL-backed implementation of the
// review store contract.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hanzideck/hanzideck-api/internal/domain"
	"github.com/hanzideck/hanzideck-api/internal/platform/logger"
	"github.com/hanzideck/hanzideck-api/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface using a
// PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. It accepts a database connection pool that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresReviewStore(db *sql.DB, logger *slog.Logger) *PostgresReviewStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// FetchStatuses implements store.ReviewStore.FetchStatuses.
// Cards the user has never reviewed are simply absent from the result.
func (s *PostgresReviewStore) FetchStatuses(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []string,
) (map[string]domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return map[string]domain.ReviewRecord{}, nil
	}

	query := `
		SELECT card_id, status, last_reviewed_at, interval_days, review_count
		FROM review_records
		WHERE user_id = $1 AND card_id = ANY($2)
	`

	rows, err := s.db.QueryContext(ctx, query, userID, cardIDs)
	if err != nil {
		log.Error("failed to fetch review statuses",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("card_count", len(cardIDs)))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	records := make(map[string]domain.ReviewRecord, len(cardIDs))
	for rows.Next() {
		var rec domain.ReviewRecord
		var status string
		var lastReviewed sql.NullTime

		if err := rows.Scan(&rec.CardID, &status, &lastReviewed, &rec.IntervalDays, &rec.ReviewCount); err != nil {
			log.Error("failed to scan review record",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, MapError(err)
		}

		rec.Status = domain.Status(status)
		if lastReviewed.Valid {
			t := lastReviewed.Time.UTC()
			rec.LastReviewedAt = &t
		}
		records[rec.CardID] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("fetched review statuses",
		slog.String("user_id", userID.String()),
		slog.Int("requested", len(cardIDs)),
		slog.Int("found", len(records)))
	return records, nil
}

// PersistBatch implements store.ReviewStore.PersistBatch.
// Updates are applied in arrival order within a single transaction so
// the final row for a card equals the last update in the batch. Each
// update carries absolute already-computed state, so the upsert
// overwrites unconditionally: two same-card updates in one batch may
// share a timestamp down to the column's microsecond resolution, and
// the later one must still win. A retried batch is recomputed from the
// same base state and writes identical values, so the unconditional
// overwrite stays idempotent.
func (s *PostgresReviewStore) PersistBatch(
	ctx context.Context,
	userID uuid.UUID,
	updates []domain.ComputedUpdate,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MapError(fmt.Errorf("failed to begin transaction: %w", err))
	}

	query := `
		INSERT INTO review_records
			(user_id, card_id, status, last_reviewed_at, interval_days, review_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			interval_days = EXCLUDED.interval_days,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	for _, upd := range updates {
		// A zero last-reviewed timestamp is a reset and persists as NULL.
		lastReviewed := sql.NullTime{Time: upd.LastReviewedAt, Valid: !upd.LastReviewedAt.IsZero()}

		if _, err := tx.ExecContext(
			ctx,
			query,
			userID,
			upd.CardID,
			string(upd.Status),
			lastReviewed,
			upd.IntervalDays,
			upd.ReviewCount,
			now,
		); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to roll back persist transaction",
					slog.String("error", rbErr.Error()),
					slog.String("user_id", userID.String()))
			}
			log.Error("failed to persist review update",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("card_id", upd.CardID))
			return MapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit persist transaction",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("batch_size", len(updates)))
		return MapError(err)
	}

	log.Debug("persisted review batch",
		slog.String("user_id", userID.String()),
		slog.Int("batch_size", len(updates)))
	return nil
}
