// internal/common/database/tx.go
// Transaction helper with bounded retry on serialization conflicts

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrTxConflict is returned when a transaction keeps losing against
// concurrent writers after all retries. Callers should treat it as a
// transient failure, not a state error.
var ErrTxConflict = errors.New("transaction conflict, please retry")

const maxTxRetries = 3

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTxRetry runs fn like WithTx, retrying a bounded number of times when
// Postgres reports a serialization failure or deadlock. Any other error is
// surfaced immediately.
func WithTxRetry(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = WithTx(ctx, db, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return ErrTxConflict
}

// isRetryable reports whether the error is a Postgres serialization
// failure (40001) or deadlock (40P01)
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// IsUniqueViolation reports whether the error is a Postgres unique
// constraint violation, optionally for a specific constraint name
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
