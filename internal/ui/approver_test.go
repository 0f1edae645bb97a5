package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

func newTestForcedApprover(output io.Writer, sleepFn func(time.Duration)) *ForcedApprover {
	return &ForcedApprover{
		countdown: flywaysum.DefaultForceApprovalCountdown,
		output:    output,
		sleepFn:   sleepFn,
	}
}

func TestForcedApprover_ApprovesAfterCountdown(t *testing.T) {
	var output bytes.Buffer
	sleepCalls := 0

	approver := newTestForcedApprover(&output, func(d time.Duration) {
		if d != time.Second {
			t.Errorf("Expected 1s sleeps, got %s", d)
		}
		sleepCalls++
	})

	approved, err := approver.RequestApproval(context.Background(), "V3__add_index.sql")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approved {
		t.Fatal("Expected approval after countdown")
	}
	if sleepCalls != 3 {
		t.Errorf("Expected 3 sleep calls (one per second), got %d", sleepCalls)
	}

	out := output.String()
	if !strings.Contains(out, "V3__add_index.sql will be backed up") {
		t.Errorf("Expected output to name the file, got:\n%s", out)
	}
	if !strings.Contains(out, "Rewriting in: 1 seconds") {
		t.Errorf("Expected countdown in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Proceeding with rewrite") {
		t.Errorf("Expected proceeding message, got:\n%s", out)
	}
}

func TestForcedApprover_ContextCancellation(t *testing.T) {
	var output bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())

	sleepCalls := 0
	approver := newTestForcedApprover(&output, func(time.Duration) {
		sleepCalls++
		if sleepCalls >= 2 {
			cancel()
		}
	})

	approved, err := approver.RequestApproval(ctx, "V1__init.sql")
	if err == nil {
		t.Fatal("Expected context cancellation error")
	}
	if approved {
		t.Fatal("Expected approval to be false on cancellation")
	}
	if !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("Expected context canceled error, got: %v", err)
	}
	if strings.Contains(output.String(), "Proceeding") {
		t.Error("Cancelled countdown must not report proceeding")
	}
}

func TestForcedApprover_CancelledOnLastTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleepCalls := 0
	approver := newTestForcedApprover(io.Discard, func(time.Duration) {
		sleepCalls++
		if sleepCalls == 3 {
			cancel()
		}
	})

	approved, err := approver.RequestApproval(ctx, "V1__init.sql")
	if err == nil || approved {
		t.Fatalf("Expected denial with error, got approved=%v err=%v", approved, err)
	}
}

func TestNewForcedApprover(t *testing.T) {
	fa, ok := NewForcedApprover(true).(*ForcedApprover)
	if !ok {
		t.Fatal("Expected *ForcedApprover type")
	}
	if !fa.verbose {
		t.Error("Expected verbose=true")
	}
	if fa.output == nil {
		t.Error("Expected non-nil output writer")
	}
	if fa.sleepFn == nil {
		t.Error("Expected non-nil sleep function")
	}
	if fa.countdown != flywaysum.DefaultForceApprovalCountdown {
		t.Errorf("Expected default countdown, got %s", fa.countdown)
	}
}

func TestInteractiveApprover_Answers(t *testing.T) {
	tests := []struct {
		input    string
		approved bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"yep\n", false},
		{"V1__init.sql\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var output bytes.Buffer
			approver := &InteractiveApprover{
				input:  strings.NewReader(tt.input),
				output: &output,
			}

			approved, err := approver.RequestApproval(context.Background(), "V1__init.sql")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if approved != tt.approved {
				t.Errorf("approved = %v, want %v", approved, tt.approved)
			}

			out := output.String()
			if !strings.Contains(out, "Proceed? [y/N]") {
				t.Errorf("Expected prompt, got:\n%s", out)
			}
			if tt.approved && !strings.Contains(out, "Confirmed") {
				t.Errorf("Expected confirmation message, got:\n%s", out)
			}
			if !tt.approved && !strings.Contains(out, "No files were changed") {
				t.Errorf("Expected cancellation message, got:\n%s", out)
			}
		})
	}
}

func TestInteractiveApprover_ReadError(t *testing.T) {
	approver := &InteractiveApprover{
		input:  &errorReader{err: io.ErrUnexpectedEOF},
		output: io.Discard,
	}

	approved, err := approver.RequestApproval(context.Background(), "V1__init.sql")
	if err == nil {
		t.Fatal("Expected error for read failure")
	}
	if approved {
		t.Fatal("Expected denial on read error")
	}
	if !strings.Contains(err.Error(), "failed to read input") {
		t.Errorf("Expected read error wrapper, got: %v", err)
	}
}

func TestInteractiveApprover_EOFWithoutAnswer(t *testing.T) {
	approver := &InteractiveApprover{
		input:  strings.NewReader(""),
		output: io.Discard,
	}

	approved, err := approver.RequestApproval(context.Background(), "V1__init.sql")
	if err == nil || approved {
		t.Fatalf("Expected read error, got approved=%v err=%v", approved, err)
	}
}

func TestInteractiveApprover_ContextCancellation(t *testing.T) {
	input := newBlockingReader()
	t.Cleanup(func() { input.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	approver := &InteractiveApprover{
		input:  input,
		output: io.Discard,
	}

	approved, err := approver.RequestApproval(ctx, "V1__init.sql")
	if err == nil {
		t.Fatal("Expected context cancellation error")
	}
	if approved {
		t.Fatal("Expected denial on context cancellation")
	}
}

func TestNewInteractiveApprover(t *testing.T) {
	ia, ok := NewInteractiveApprover(false).(*InteractiveApprover)
	if !ok {
		t.Fatal("Expected *InteractiveApprover type")
	}
	if ia.verbose {
		t.Error("Expected verbose=false")
	}
	if ia.input == nil {
		t.Error("Expected non-nil input reader")
	}
	if ia.output == nil {
		t.Error("Expected non-nil output writer")
	}
}

func TestAutoApprover(t *testing.T) {
	approver := NewAutoApprover()

	approved, err := approver.RequestApproval(context.Background(), "V1__init.sql")
	if err != nil || !approved {
		t.Fatalf("Expected approval, got approved=%v err=%v", approved, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	approved, err = approver.RequestApproval(ctx, "V1__init.sql")
	if err == nil || approved {
		t.Fatalf("Expected cancellation, got approved=%v err=%v", approved, err)
	}
}

type errorReader struct {
	err error
}

func (r *errorReader) Read([]byte) (int, error) {
	return 0, r.err
}

type blockingReader struct {
	done chan struct{}
}

func newBlockingReader() *blockingReader {
	return &blockingReader{done: make(chan struct{})}
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.done
	return 0, io.EOF
}

func (r *blockingReader) Close() error {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	return nil
}
