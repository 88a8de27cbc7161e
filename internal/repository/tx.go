package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hvubui/cinebook/internal/domain"
)

// queryer is the read surface shared by a pool and a transaction, so query
// helpers can run standalone or inside a transaction.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const maxTxRetries = 3

func runInTx(ctx context.Context, db *pgxpool.Pool, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

// runInSerializableTx runs fn in a serializable transaction and retries a
// bounded number of times when Postgres aborts it with a serialization
// failure or deadlock. This is the optimistic-concurrency substrate for the
// reservation and settlement engines: conflicting concurrent writers abort
// at commit instead of blocking readers. Exhausted retries surface as
// domain.ErrEditConflict so callers can report a retryable conflict.
func runInSerializableTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}

	for attempt := 1; ; attempt++ {
		err := runInTx(ctx, db, opts, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		if attempt == maxTxRetries {
			return domain.ErrEditConflict
		}
	}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
