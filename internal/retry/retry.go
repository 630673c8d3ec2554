// Package retry runs operations with bounded exponential backoff.
package retry

import (
	"context"
	"time"
)

// Config controls backoff. Attempts counts the initial call.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultConfig is used for transient primary backend errors.
func DefaultConfig() Config {
	return Config{
		Attempts:  3,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// Do calls fn until it succeeds, returns an error that retryable rejects,
// or the attempts are exhausted. The last error is returned unchanged so
// callers can still classify it with errors.Is. A nil retryable retries
// every error.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, retryable func(error) bool) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	delay := cfg.BaseDelay

	var err error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == cfg.Attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return err
}
