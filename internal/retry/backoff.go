package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// ExponentialBackoff grows the delay geometrically from an initial value up
// to a cap, with optional symmetric jitter.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	// maxAttempts counts retries after the first try; negative means unlimited.
	maxAttempts int
	// jitter of 0.1 spreads each delay over +/- 10%.
	jitter     float64
	jitterFunc func() float64
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initialDelay = d }
}

// WithMaxDelay caps every delay.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.maxDelay = d }
}

// WithMultiplier sets the growth factor between attempts.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.multiplier = m }
}

// WithJitter sets the jitter factor in [0, 1].
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithJitterFunc replaces the random source; it must return values in [0, 1).
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitterFunc = f }
}

// NewExponentialBackoff creates a strategy with flywaysum's default delays.
//
//	backoff := retry.NewExponentialBackoff(5,
//	    retry.WithInitialDelay(200*time.Millisecond),
//	    retry.WithJitter(0),
//	)
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: flywaysum.DefaultRetryInitialDelay,
		maxDelay:     flywaysum.DefaultRetryMaxDelay,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
		jitterFunc:   rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns initialDelay * multiplier^attempt, capped at maxDelay,
// then jittered.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if delay > float64(b.maxDelay) || math.IsInf(delay, 1) || math.IsNaN(delay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 && b.jitterFunc != nil {
		offset := b.jitterFunc()*2 - 1 // [0,1) -> [-1,1)
		delay *= 1 + b.jitter*offset
	}

	return time.Duration(delay)
}

// MaxAttempts returns the retry limit.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}

var _ flywaysum.BackoffStrategy = (*ExponentialBackoff)(nil)
