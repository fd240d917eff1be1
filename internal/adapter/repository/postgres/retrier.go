package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATEs that leave the snapshot row untouched and are safe to retry.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
)

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries caps the retries after the first attempt.
func WithMaxRetries(n uint64) RetrierOption {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithIntervals sets the first and the largest wait between attempts.
func WithIntervals(initial, max time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initialInterval = initial
		r.maxInterval = max
	}
}

// Retrier retries snapshot writes that failed on a transient server error.
type Retrier struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs write for the snapshot under key until it succeeds, fails with
// a non-retryable error, runs out of retries or ctx is done.
func (r *Retrier) Retry(ctx context.Context, key string, write func() error) error {
	attempts := 0
	op := func() error {
		attempts++
		err := write()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn().Err(err).
			Str("snapshot_key", key).
			Int("attempt", attempts).
			Dur("wait", wait).
			Msg("snapshot write failed, retrying")
	}

	if err := backoff.RetryNotify(op, r.policy(ctx), notify); err != nil {
		if attempts > 1 {
			return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}
		return err
	}
	return nil
}

func (r *Retrier) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	// The retry count bounds the total time.
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrAdminShutdown, pgErrCannotConnectNow:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
