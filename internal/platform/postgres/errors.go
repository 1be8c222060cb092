package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/hanzideck/hanzideck-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// serializationFailureCode and deadlockDetectedCode are transaction
	// conflicts that succeed on retry
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"

	// queryCanceledCode is raised when a statement times out
	queryCanceledCode = "57014"
)

// MapError maps a database error to the store error taxonomy. Integrity
// violations are permanent: retrying an identical batch cannot succeed,
// so the write queue must stop after bounded attempts. Connection
// failures, timeouts, and transaction conflicts are transient. This
// function should be used on every database operation so classification
// stays consistent.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// Handle common SQL errors
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return store.Transient(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return store.Transient(err)
	}

	// Handle PostgreSQL-specific errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode, foreignKeyViolationCode, checkViolationCode, notNullViolationCode:
			return store.Permanent(fmt.Errorf("constraint violation (%s): %w", pgErr.ConstraintName, err))
		case serializationFailureCode, deadlockDetectedCode, queryCanceledCode:
			return store.Transient(err)
		}
		// Connection exceptions (class 08) are transient
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return store.Transient(err)
		}
	}

	// Unclassified errors stay transient so the queue keeps retrying
	return store.Transient(err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
