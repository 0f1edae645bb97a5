package cli

import (
	"context"
	"fmt"

	"github.com/vvka-141/flywaysum/internal/ui"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// unattendedApprover refuses every rewrite. It is used when nobody can be
// asked and neither --yes nor --force was given.
type unattendedApprover struct{}

func (unattendedApprover) RequestApproval(_ context.Context, path string) (bool, error) {
	return false, fmt.Errorf("%w: cannot confirm rewrite of %s without a terminal; use --yes or --force",
		flywaysum.ErrApprovalDenied, path)
}

// selectApprover picks how a rewrite is confirmed.
//
//	--yes          approve immediately
//	--force        approve after a countdown
//	interactive    ask on the terminal
//	otherwise      refuse
func selectApprover(yes, force, interactive, verbose bool) flywaysum.Approver {
	switch {
	case yes:
		return ui.NewAutoApprover()
	case force:
		return ui.NewForcedApprover(verbose)
	case interactive:
		return ui.NewInteractiveApprover(verbose)
	default:
		return unattendedApprover{}
	}
}
