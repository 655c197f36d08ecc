package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = 1 * time.Second
	retryJitterFraction  = 0.25
)

// retryBackoff is the wait after the given 0-indexed attempt: 1s, 2s, 4s
// and so on, each with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	base := defaultRetryBaseWait << max(attempt, 0)
	spread := float64(base) * retryJitterFraction
	return base + time.Duration(spread*(2*rand.Float64()-1)) // #nosec G404 -- jitter only
}

// retrier runs an operation up to attempts times, sleeping retryBackoff
// between tries while retryable says the failure may pass.
type retrier struct {
	op        string
	attempts  int
	retryable func(error) bool
	logger    *slog.Logger
}

func (r retrier) run(ctx context.Context, fn func() error) error {
	attempts := r.attempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	var err error
	for attempt := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		if r.retryable != nil && !r.retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		wait := retryBackoff(attempt)
		if r.logger != nil {
			r.logger.Warn(r.op+" failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", attempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%s: canceled while waiting to retry: %w", r.op, ctx.Err())
		case <-t.C:
		}
	}
	if r.retryable == nil {
		return fmt.Errorf("%s after %d attempts: %w", r.op, attempts, err)
	}
	return err
}
