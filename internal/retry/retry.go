// Package retry re-executes operations that contend on shared ledger rows.
// Only recognized conflict signals are retried; business-rule failures
// propagate immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mpontes/bank-ledger/internal/domain"
	"github.com/mpontes/bank-ledger/internal/logging"
	"github.com/mpontes/bank-ledger/internal/repository"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 25 * time.Millisecond
)

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// IsRetryable overrides the conflict classifier. Nil means IsConflict.
	IsRetryable func(error) bool
}

func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// IsConflict reports whether err is a contention signal: an optimistic
// version mismatch or the store's serialization-failure/deadlock code.
// Timeouts and business errors are not conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, domain.ErrVersionConflict) || repository.IsSerializationFailure(err)
}

// Do invokes op, retrying on detected conflicts with exponential backoff
// until cfg.MaxAttempts is spent. Each redo runs op from the top so it
// re-reads fresh state. Exhaustion yields ErrRetryExhausted wrapping the
// last conflict, so callers can tell "gave up under contention" apart from
// a business-rule violation.
func Do(ctx context.Context, cfg Config, op func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	isRetryable := cfg.IsRetryable
	if isRetryable == nil {
		isRetryable = IsConflict
	}

	log := logging.FromContext(ctx)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.BaseDelay
	schedule := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(cfg.MaxAttempts-1)), ctx)

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		log.Warn("conflict detected, retrying",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", err,
		)
	}

	err := backoff.RetryNotify(wrapped, schedule, notify)
	if err == nil {
		return nil
	}
	if isRetryable(err) {
		return fmt.Errorf("retry.Do: %d attempts: %w: %w", cfg.MaxAttempts, domain.ErrRetryExhausted, err)
	}
	return err
}
