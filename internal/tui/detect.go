package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// EnvNonInteractive forces non-interactive mode when set to 1.
const EnvNonInteractive = "FLYWAYSUM_NON_INTERACTIVE"

// DetectMode determines whether prompts and animated progress may be used.
//
// Returns ModeNonInteractive if:
//   - FLYWAYSUM_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - stdin or stderr is not a terminal
func DetectMode() Mode {
	return detectMode(os.Getenv,
		term.IsTerminal(int(os.Stdin.Fd())),
		term.IsTerminal(int(os.Stderr.Fd())),
	)
}

func detectMode(getenv func(string) string, stdinTTY, stderrTTY bool) Mode {
	switch {
	case getenv(EnvNonInteractive) == "1",
		getenv("CI") != "",
		getenv("NO_COLOR") != "",
		!stdinTTY,
		!stderrTTY:
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
