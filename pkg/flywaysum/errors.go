package flywaysum

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	comment, err := repairer.Repair(ctx, path, target)
//	if errors.Is(err, flywaysum.ErrNotFound) {
//	    // No comment of length <= 8 reproduces the target
//	}
var (
	// ErrInvalidUTF8 indicates file content could not be decoded as UTF-8.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

	// ErrEngineCapability indicates a checksum accumulator cannot export or
	// import its raw register, so incremental search is impossible.
	ErrEngineCapability = errors.New("checksum engine cannot snapshot its register")

	// ErrNotFound indicates no candidate comment reproduces the target checksum.
	ErrNotFound = errors.New("no matching comment within search limits")

	// ErrVerificationFailed indicates the modified content did not hash to the target.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrHistoryNotFound indicates the script has no checksum in the Flyway history table.
	ErrHistoryNotFound = errors.New("script not found in schema history")
)

// usageErrorPatterns are prefixes of the errors cobra returns for bad invocations.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"missing required argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrVerificationFailed):
		return ExitVerificationFailed
	case errors.Is(err, ErrInvalidUTF8):
		return ExitInvalidContent
	case errors.Is(err, ErrHistoryNotFound):
		return ExitHistoryNotFound
	}

	errStr := err.Error()
	for _, p := range usageErrorPatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
