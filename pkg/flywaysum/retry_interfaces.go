package flywaysum

import "time"

// ErrorClassifier determines whether an error is transient and worth retrying.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy computes delays between retry attempts.
type BackoffStrategy interface {
	// NextDelay returns the delay before retry number attempt (0-based).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the retry limit; negative means unlimited.
	MaxAttempts() int
}
