// Package retry runs an operation again with exponential backoff while its error
// is classified as transient.
package retry

import (
	"context"
	"time"
)

// Config configures exponential backoff.
type Config struct {
	Attempts   int           // total number of calls, including the first one
	BaseDelay  time.Duration // delay before the second call
	MaxDelay   time.Duration // upper bound of a single delay
	Multiplier float64       // growth factor between delays
}

// DefaultConfig is three attempts starting at 50ms.
func DefaultConfig() Config {
	return Config{
		Attempts:   3,
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   500 * time.Millisecond,
		Multiplier: 2,
	}
}

// Backoff returns the longest total time Do can spend waiting between calls.
func (c Config) Backoff() time.Duration {
	var total time.Duration
	delay := c.BaseDelay
	for range max(c.Attempts, 1) - 1 {
		total += delay
		delay = time.Duration(float64(delay) * c.Multiplier)
		if c.MaxDelay > 0 && delay > c.MaxDelay {
			delay = c.MaxDelay
		}
	}
	return total
}

// Do calls fn until it succeeds, returns an error retryable rejects, or attempts
// run out. When ctx ends while waiting, the last error from fn is returned.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error), retryable func(error) bool) (T, error) {
	attempts := max(cfg.Attempts, 1)
	backoff := cfg.BaseDelay

	var (
		result T
		err    error
	)
	for attempt := range attempts {
		result, err = fn(ctx)
		if err == nil || !retryable(err) || attempt == attempts-1 {
			return result, err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && backoff > cfg.MaxDelay {
			backoff = cfg.MaxDelay
		}
	}

	return result, err
}
