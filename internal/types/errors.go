package types

import (
	"fmt"
	"strings"
)

// Error taxonomy shared by every module. Handlers map these onto
// failure payloads; anything else is treated as a transient
// infrastructure error and retried by the router middleware.

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFoundError builds a NotFoundError for the given entity kind.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// AuthorizationError reports a failed role or session check.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// ValidationError carries every violation found in one validation pass.
// SavePairings collects all structural violations before reporting;
// single-field failures (score out of range) carry one violation.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewValidationError builds a ValidationError from one or more violations.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// ConflictStateError reports a mutation rejected because the target is
// in a state that forbids it (overwriting a live round, withdrawing an
// already-withdrawn team, resubmitting a finalized ballot).
type ConflictStateError struct {
	Reason string
}

func (e *ConflictStateError) Error() string {
	return "conflicting state: " + e.Reason
}
