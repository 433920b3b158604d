package entity

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a fee type code or receipt number does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateItem is returned when a draft already contains an item for the fee type
	ErrDuplicateItem = errors.New("duplicate item for fee type")

	// ErrInvalidQuantity is returned when a quantity below 1 is supplied
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrAlreadyCancelled is returned when cancelling a receipt that is already cancelled
	ErrAlreadyCancelled = errors.New("receipt already cancelled")

	// ErrMissingReason is returned when cancelling without a reason
	ErrMissingReason = errors.New("cancellation reason is required")

	// ErrDuplicatePendingFee is returned when a pending fee with the same
	// (organization, fee type, workflow) key is already recorded
	ErrDuplicatePendingFee = errors.New("pending fee already recorded")

	// ErrConstraintViolated is returned when a write breaks a stored integrity
	// rule the service layer did not catch first
	ErrConstraintViolated = errors.New("storage constraint violated")

	// ErrStorageUnavailable is returned when the persistence layer cannot be reached.
	// Not retried here; callers decide on retry/backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError aggregates all input problems found during finalization so
// callers can surface them together rather than one at a time.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Add appends a problem description
func (e *ValidationError) Add(problem string) {
	e.Problems = append(e.Problems, problem)
}

// HasProblems reports whether any problem was recorded
func (e *ValidationError) HasProblems() bool {
	return len(e.Problems) > 0
}
