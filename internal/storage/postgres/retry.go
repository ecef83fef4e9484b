package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	maxElapsedTime  = 30 * time.Second
	initialInterval = 500 * time.Millisecond
	maxInterval     = 5 * time.Second
	maxRetries      = uint64(5)
)

// IsRetryableError checks if the given error is worth another attempt.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return false
	}

	var pgerr *pgdriver.Error
	if errors.As(err, &pgerr) {
		// Connection problems (08), serialization and deadlocks (40),
		// resource exhaustion (53) and operator intervention (57)
		code := pgerr.Field('C')
		if len(code) >= 2 {
			switch code[:2] {
			case "08", "40", "53", "57":
				return true
			}
		}

		return code == "55P03" // lock_not_available
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errMsg := err.Error()

	return strings.Contains(errMsg, "connection reset by peer") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "i/o timeout") ||
		strings.Contains(errMsg, "EOF")
}

// withRetry runs a database operation with exponential backoff.
// Non-retryable errors stop the loop and are returned unchanged.
func withRetry[T any](ctx context.Context, operation func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxElapsedTime),
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	), maxRetries)

	err := backoff.Retry(func() error {
		var err error

		result, err = operation(ctx)
		if err != nil {
			if !IsRetryableError(err) {
				return backoff.Permanent(err)
			}

			lastErr = err

			return err
		}

		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil && lastErr != nil && !IsRetryableError(err) {
		return result, err
	}

	if err != nil && lastErr != nil {
		return result, fmt.Errorf("database operation failed after retries: %w", lastErr)
	}

	return result, err
}
