package circulation

import (
	"fmt"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateError reports an operation that is not legal for the loan's current
// status, such as returning a loan that was already returned.
type StateError struct {
	LoanID string
	Status models.LoanStatus
	Op     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s loan %s in status %q", e.Op, e.LoanID, e.Status)
}

// ConflictError reports that an inventory invariant would be violated.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// LimitExceededError reports a renewal past the configured cap.
type LimitExceededError struct {
	LoanID string
	Limit  int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("loan %s already renewed %d times", e.LoanID, e.Limit)
}

// PermissionError reports an actor whose role does not allow the operation.
type PermissionError struct {
	Role models.Role
	Op   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Op)
}
