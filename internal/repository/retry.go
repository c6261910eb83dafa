package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenmarket/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const maxWriteAttempts = 5

// Postgres error codes that indicate a transient write conflict rather
// than a real failure.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isTransientConflict reports whether err is a write conflict worth
// retrying.
func isTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// withWriteRetry runs op, retrying serialization failures and deadlocks
// with exponential backoff up to maxWriteAttempts before surfacing
// TRANSIENT_CONTENTION. Domain errors and other failures pass through
// immediately.
func withWriteRetry(ctx context.Context, logger zerolog.Logger, name string, op func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = 100 * time.Millisecond

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		opErr := op(ctx)
		if opErr == nil {
			return nil
		}
		if isTransientConflict(opErr) && attempts < maxWriteAttempts {
			logger.Debug().
				Err(opErr).
				Str("operation", name).
				Int("attempt", attempts).
				Msg("retrying transient write conflict")
			return opErr
		}
		return backoff.Permanent(opErr)
	}, backoff.WithContext(bo, ctx))

	if err != nil && isTransientConflict(err) {
		logger.Warn().
			Err(err).
			Str("operation", name).
			Int("attempts", attempts).
			Msg("write conflict retries exhausted")
		return fmt.Errorf("%w: %s", model.ErrTransientContention, name)
	}
	return err
}
