package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Executor runs an operation until it succeeds, fails with a non-transient
// error, runs out of attempts, or its context is done.
type Executor struct {
	classifier flywaysum.ErrorClassifier
	strategy   flywaysum.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates an executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier flywaysum.ErrorClassifier, strategy flywaysum.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls callback before each wait.
// The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation. Non-transient errors are returned unchanged. When
// retries are exhausted the last error is wrapped with the attempt count.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	if err == nil || !e.classifier.IsTransient(err) {
		return err
	}

	limit := e.strategy.MaxAttempts()
	retries := 0
	for ; limit < 0 || retries < limit; retries++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(retries)
		if e.onRetry != nil {
			e.onRetry(retries, err, delay)
		}

		if waitErr := sleep(ctx, delay); waitErr != nil {
			return waitErr
		}

		err = operation(ctx)
		if err == nil || !e.classifier.IsTransient(err) {
			return err
		}
	}

	if retries == 0 {
		return err
	}
	return fmt.Errorf("giving up after %d attempts: %w", retries+1, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
