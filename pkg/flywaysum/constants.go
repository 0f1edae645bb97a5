package flywaysum

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess            = 0  // Checksums match or repair completed
	ExitGeneralError       = 1  // Unknown or unclassified error
	ExitUsageError         = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic              = 3  // Internal panic (unexpected crash)
	ExitConfigError        = 10 // Invalid configuration
	ExitConnectionError    = 11 // Failed to connect to database
	ExitApprovalDenied     = 12 // User denied overwrite approval
	ExitNotFound           = 13 // No matching comment within search limits
	ExitVerificationFailed = 14 // Modified content did not reproduce the target checksum
	ExitInvalidContent     = 15 // File content is not valid UTF-8
	ExitHistoryNotFound    = 16 // Script not present in flyway_schema_history
)

const (
	// CommentPrefix starts every generated comment. It is a SQL line comment,
	// so the appended line is inert for the migration.
	CommentPrefix = "--"

	// DefaultMaxCommentLength is the longest comment body tried, excluding CommentPrefix.
	DefaultMaxCommentLength = 8

	// DefaultWorkers is the number of concurrent search workers per length.
	DefaultWorkers = 16

	// DefaultBackupSuffix is appended to the original file name before it is replaced.
	DefaultBackupSuffix = ".old"

	// DefaultForceApprovalCountdown is the countdown duration before forced approval proceeds.
	DefaultForceApprovalCountdown = 3 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultHistorySchema and DefaultHistoryTable locate Flyway's history table.
	DefaultHistorySchema = "public"
	DefaultHistoryTable  = "flyway_schema_history"
)
