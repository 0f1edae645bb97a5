package flywaysum

import "context"

// Approver handles user interaction before a migration file is replaced.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts the user for a yes/no answer
//   - AutoApprover: Approves immediately
type Approver interface {
	// RequestApproval asks for confirmation before path is backed up and rewritten.
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, path string) (bool, error)
}
