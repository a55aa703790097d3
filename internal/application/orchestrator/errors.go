package orchestrator

import "errors"

// Validation errors: caller misuse, reported synchronously, no state mutation.
var (
	// ErrWorkflowNotFound is returned when no projection row exists for the workflow ID
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrAlreadyResolved is returned when resume is called on a workflow whose
	// approval is no longer pending (duplicate approval clicks)
	ErrAlreadyResolved = errors.New("workflow approval already resolved")

	// ErrNotAwaitingApproval is returned when resume is called on a workflow
	// that has not reached the approval gate
	ErrNotAwaitingApproval = errors.New("workflow is not awaiting approval")

	// ErrReviewerRequired is returned when resume is called without a reviewer ID
	ErrReviewerRequired = errors.New("reviewer ID is required")
)

// ErrConsistency marks storage faults where the projection and the checkpoint
// store disagree. Distinct from validation errors: the caller did nothing
// wrong, the stored state is suspect.
var ErrConsistency = errors.New("workflow state consistency fault")

// IsValidationError reports whether err is caller misuse rather than an
// engine or storage failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrAlreadyResolved) ||
		errors.Is(err, ErrNotAwaitingApproval) ||
		errors.Is(err, ErrReviewerRequired)
}
