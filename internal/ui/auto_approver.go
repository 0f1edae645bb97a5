package ui

import (
	"context"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// AutoApprover approves without asking. It backs the --yes flag.
type AutoApprover struct{}

// NewAutoApprover creates an AutoApprover.
func NewAutoApprover() flywaysum.Approver {
	return AutoApprover{}
}

// RequestApproval returns true unless ctx is already done.
func (AutoApprover) RequestApproval(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

var _ flywaysum.Approver = AutoApprover{}
