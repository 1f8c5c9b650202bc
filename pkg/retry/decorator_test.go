package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastPolicy() Policy {
	return Policy{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), zap.NewNop(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(), zap.NewNop(), func() error {
		attempts++
		return errors.New("still down")
	})

	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("bad request")
	policy := fastPolicy()
	policy.RetryableFunc = func(err error) bool {
		return !errors.Is(err, permanent)
	}

	attempts := 0
	err := Do(context.Background(), policy, zap.NewNop(), func() error {
		attempts++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Do(ctx, fastPolicy(), zap.NewNop(), func() error {
		attempts++
		cancel()
		return errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestBackoffIsCappedAndGrows(t *testing.T) {
	b := NewBackoff(Policy{
		MaxRetries:     5,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     40 * time.Millisecond,
		Multiplier:     2.0,
	})

	assert.Equal(t, 10*time.Millisecond, b.Calculate(1))
	assert.Equal(t, 20*time.Millisecond, b.Calculate(2))
	assert.Equal(t, 40*time.Millisecond, b.Calculate(3))
	assert.Equal(t, 40*time.Millisecond, b.Calculate(4))
}
