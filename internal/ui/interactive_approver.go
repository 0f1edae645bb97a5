package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// InteractiveApprover asks a yes/no question on the console. Anything other
// than y or yes (case-insensitive) is a denial.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover reading stdin.
func NewInteractiveApprover(verbose bool) flywaysum.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval prompts for confirmation and waits for a line of input.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, path string) (bool, error) {
	fmt.Fprintf(a.output, "\n%s will be renamed to a backup and rewritten with the matching comment.\n", path)
	fmt.Fprint(a.output, "Proceed? [y/N]: ")

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && !(err == io.EOF && input != "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		switch strings.ToLower(input) {
		case "y", "yes":
			fmt.Fprintln(a.output, "✓ Confirmed.")
			return true, nil
		default:
			fmt.Fprintln(a.output, "✗ Cancelled. No files were changed.")
			return false, nil
		}
	}
}

var _ flywaysum.Approver = (*InteractiveApprover)(nil)
