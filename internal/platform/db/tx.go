package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStaleVersion indicates an optimistic-concurrency write matched no row
// because the version column changed underneath it.
var ErrStaleVersion = errors.New("platform/db: stale version")

// MaxConflictRetries bounds reload-and-reapply cycles for conflicting writes.
const MaxConflictRetries = 3

// WithTx executes a function within a transaction using the RepeatableRead isolation level.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// RetryOnConflict runs fn until it succeeds, fails with a non-conflict error,
// or MaxConflictRetries attempts have been spent. fn must reload any row state
// it depends on at the top of each attempt.
func RetryOnConflict(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= MaxConflictRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn(attempt)
		if err == nil || !errors.Is(err, ErrStaleVersion) {
			return err
		}
	}
	return err
}
