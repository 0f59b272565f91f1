package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Retry policy for durable writes under contention: up to 5 attempts
// with exponential backoff between 1s and 8s. Only the documented class
// of transient write-conflict errors is retried; everything else
// surfaces immediately.
const (
	retryMaxAttempts     = 5
	retryInitialInterval = 1 * time.Second
	retryMaxInterval     = 8 * time.Second
	retryMultiplier      = 2
)

// transientSQLStates are the Postgres error codes treated as retryable
// write conflicts: serialization_failure, deadlock_detected, and
// lock_not_available.
var transientSQLStates = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
}

// IsTransient reports whether err belongs to the retryable
// write-conflict class.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientSQLStates[pgErr.Code]
	}
	return false
}

// withRetry runs op, retrying transient failures per the policy above.
// The last error is returned unwrapped when the attempt ceiling is hit.
func withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	bo.MaxInterval = retryMaxInterval
	bo.Multiplier = retryMultiplier

	wrapped := func() error {
		err := op()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, retryMaxAttempts-1), ctx),
	)
}
