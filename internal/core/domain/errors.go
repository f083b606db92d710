package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition indicates the requested workflow move has no edge
// from the report's current state.
var ErrInvalidTransition = errors.New("invalid report transition")

// UnauthorizedError carries the policy's machine-readable deny reason.
type UnauthorizedError struct {
	Action Action
	Reason DenyReason
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s denied (%s)", e.Action, e.Reason)
}

// NotFoundError identifies a missing entity by kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ValidationError reports a field that violates a constraint.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s (%s)", e.Field, e.Constraint)
}
