package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntil_DoneImmediately(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), PollConfig{MaxAttempts: 5, Interval: time.Millisecond},
		func(context.Context) (bool, error) {
			calls++
			return true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPollUntil_DoneAfterRetries(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), PollConfig{MaxAttempts: 5, Interval: time.Millisecond},
		func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollUntil_BudgetExhausted(t *testing.T) {
	calls := 0
	err := PollUntil(context.Background(), PollConfig{MaxAttempts: 4, Interval: time.Millisecond},
		func(context.Context) (bool, error) {
			calls++
			return false, nil
		})

	require.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, 4, calls)
	assert.Contains(t, err.Error(), "4 attempts")
}

func TestPollUntil_CheckErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := PollUntil(context.Background(), PollConfig{MaxAttempts: 5, Interval: time.Millisecond},
		func(context.Context) (bool, error) {
			calls++
			return false, boom
		})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestPollUntil_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	err := PollUntil(ctx, PollConfig{MaxAttempts: 10, Interval: 50 * time.Millisecond},
		func(context.Context) (bool, error) {
			cancel()
			return false, nil
		})

	require.ErrorIs(t, err, context.Canceled)
}

func TestPollUntil_ZeroConfigUsesDefaults(t *testing.T) {
	err := PollUntil(context.Background(), PollConfig{}, func(context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
}
