package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errTransient = &pgconn.PgError{Code: "08006", Message: "connection failure"}
	errFatal     = &pgconn.PgError{Code: "42P01", Message: "relation \"flyway_schema_history\" does not exist"}
)

// failingOperation returns errs in order, then nil.
type failingOperation struct {
	invocations int
	errs        []error
}

func (o *failingOperation) execute(context.Context) error {
	o.invocations++
	if o.invocations <= len(o.errs) {
		return o.errs[o.invocations-1]
	}
	return nil
}

func repeat(err error, n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = err
	}
	return out
}

func fastExecutor(maxAttempts int) *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0)),
	)
}

func TestNewExecutor_NilArgs(t *testing.T) {
	for name, fn := range map[string]func(){
		"nil classifier": func() { NewExecutor(nil, NewExponentialBackoff(1)) },
		"nil strategy":   func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			fn()
		})
	}
}

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	op := &failingOperation{}

	if err := fastExecutor(3).Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_SuccessAfterRetries(t *testing.T) {
	op := &failingOperation{errs: repeat(errTransient, 3)}

	if err := fastExecutor(5).Execute(context.Background(), op.execute); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if op.invocations != 4 {
		t.Errorf("Expected 4 invocations, got %d", op.invocations)
	}
}

func TestExecutor_FatalErrorNoRetry(t *testing.T) {
	op := &failingOperation{errs: []error{errFatal}}

	err := fastExecutor(5).Execute(context.Background(), op.execute)
	if err != errFatal {
		t.Errorf("Expected the fatal error unchanged, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_TransientThenFatal(t *testing.T) {
	op := &failingOperation{errs: []error{errTransient, errTransient, errFatal}}

	err := fastExecutor(5).Execute(context.Background(), op.execute)
	if err != errFatal {
		t.Errorf("Expected fatal error, got %v", err)
	}
	if op.invocations != 3 {
		t.Errorf("Expected 3 invocations, got %d", op.invocations)
	}
}

func TestExecutor_ExhaustedRetries(t *testing.T) {
	op := &failingOperation{errs: repeat(errTransient, 100)}

	err := fastExecutor(3).Execute(context.Background(), op.execute)
	if !errors.Is(err, errTransient) {
		t.Fatalf("Expected wrapped transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "giving up after 4 attempts") {
		t.Errorf("Expected attempt count in error, got %v", err)
	}
	if op.invocations != 4 {
		t.Errorf("Expected 4 invocations (1 initial + 3 retries), got %d", op.invocations)
	}
}

func TestExecutor_NoRetries(t *testing.T) {
	op := &failingOperation{errs: repeat(errTransient, 100)}

	err := fastExecutor(0).Execute(context.Background(), op.execute)
	if err != errTransient {
		t.Errorf("Expected unwrapped transient error, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_ContextCancelledDuringWait(t *testing.T) {
	executor := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(10, WithInitialDelay(time.Minute), WithJitter(0)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	executor = executor.WithOnRetry(func(int, error, time.Duration) { cancel() })

	op := &failingOperation{errs: repeat(errTransient, 100)}
	err := executor.Execute(ctx, op.execute)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	var attempts []int
	var delays []time.Duration

	base := fastExecutor(3)
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		if err == nil {
			t.Errorf("attempt %d: expected error", attempt)
		}
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	})

	op := &failingOperation{errs: repeat(errTransient, 3)}
	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	wantDelays := []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
	if len(attempts) != 3 {
		t.Fatalf("Expected 3 retry callbacks, got %d", len(attempts))
	}
	for i := range attempts {
		if attempts[i] != i {
			t.Errorf("callback %d: attempt = %d", i, attempts[i])
		}
		if delays[i] != wantDelays[i] {
			t.Errorf("callback %d: delay = %s, want %s", i, delays[i], wantDelays[i])
		}
	}

	if base.onRetry != nil {
		t.Error("WithOnRetry must not modify the receiver")
	}
}
