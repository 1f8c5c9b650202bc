package retry

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrMaxRetriesExceeded is returned when all retry attempts are exhausted.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Policy controls retry behavior.
type Policy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         bool

	// RetryableFunc decides whether an error should be retried.
	// When nil, every error is considered retryable.
	RetryableFunc func(error) bool
}

// DefaultPolicy is a conservative policy for transient network failures.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// Validate checks the policy fields are sane.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", p.MaxRetries)
	}
	if p.InitialBackoff <= 0 {
		return fmt.Errorf("initial backoff must be positive, got %s", p.InitialBackoff)
	}
	if p.MaxBackoff < p.InitialBackoff {
		return fmt.Errorf("max backoff %s below initial backoff %s", p.MaxBackoff, p.InitialBackoff)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1, got %f", p.Multiplier)
	}
	return nil
}

// Backoff computes exponential backoff durations for a policy.
type Backoff struct {
	policy Policy
}

// NewBackoff creates a backoff calculator.
func NewBackoff(policy Policy) *Backoff {
	return &Backoff{policy: policy}
}

// Calculate returns the backoff duration for the given attempt (1-based).
func (b *Backoff) Calculate(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(b.policy.InitialBackoff)
	for i := 1; i < attempt; i++ {
		d *= b.policy.Multiplier
		if time.Duration(d) >= b.policy.MaxBackoff {
			d = float64(b.policy.MaxBackoff)
			break
		}
	}

	duration := time.Duration(d)
	if duration > b.policy.MaxBackoff {
		duration = b.policy.MaxBackoff
	}

	if b.policy.Jitter {
		// Up to 25% random jitter to avoid thundering herds.
		jitter := time.Duration(rand.Int63n(int64(duration)/4 + 1))
		duration += jitter
	}

	return duration
}
