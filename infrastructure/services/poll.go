package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default poll budget for remote video processing. 30 attempts at 2s gives a
// hard ceiling of one minute, which covers remote transcoding of the dataset's
// short clips.
const (
	DefaultPollAttempts = 30
	DefaultPollInterval = 2 * time.Second
)

// ErrPollTimeout reports that the polled condition never held within the
// attempt budget. Callers distinguish it from condition errors so a timeout
// is diagnosable as such.
var ErrPollTimeout = errors.New("poll attempts exhausted")

// PollConfig bounds a wait for a remote state transition: a fixed attempt
// count times a fixed sleep interval yields a hard ceiling on wait time.
type PollConfig struct {
	// MaxAttempts is the number of condition checks before giving up.
	MaxAttempts int
	// Interval is the sleep between checks.
	Interval time.Duration
}

// DefaultPollConfig returns the standard processing-poll budget.
func DefaultPollConfig() PollConfig {
	return PollConfig{MaxAttempts: DefaultPollAttempts, Interval: DefaultPollInterval}
}

// PollUntil invokes check up to cfg.MaxAttempts times, sleeping cfg.Interval
// between attempts. It returns nil once check reports done, the check's error
// if one occurs, and ErrPollTimeout when the budget runs out. Context
// cancellation aborts the wait immediately.
func PollUntil(ctx context.Context, cfg PollConfig, check func(context.Context) (bool, error)) error {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultPollConfig()
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("poll cancelled: %w", ctx.Err())
		case <-time.After(cfg.Interval):
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrPollTimeout, cfg.MaxAttempts)
}
