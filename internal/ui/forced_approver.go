package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// ForcedApprover approves after a short countdown. It is used with --force
// when no terminal is available to ask.
type ForcedApprover struct {
	verbose   bool
	countdown time.Duration
	output    io.Writer
	sleepFn   func(time.Duration)
}

// NewForcedApprover creates a ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) flywaysum.Approver {
	return &ForcedApprover{
		verbose:   verbose,
		countdown: flywaysum.DefaultForceApprovalCountdown,
		output:    os.Stderr,
		sleepFn:   time.Sleep,
	}
}

// RequestApproval counts down and approves unless ctx is cancelled first.
func (a *ForcedApprover) RequestApproval(ctx context.Context, path string) (bool, error) {
	fmt.Fprintf(a.output, "\n%s will be backed up and rewritten.\n", path)

	for i := int(a.countdown.Seconds()); i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rRewriting in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with rewrite of %s                              \n", path)
	return true, nil
}

var _ flywaysum.Approver = (*ForcedApprover)(nil)
