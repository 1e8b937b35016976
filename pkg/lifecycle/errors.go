package lifecycle

import (
	"errors"
	"fmt"
)

// InvalidTransitionError signals that a transition is not reachable from
// the entity's current status, or that its guard condition does not hold.
// The entity is never mutated when this error is returned.
type InvalidTransitionError struct {
	Transition string
	Current    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %q not allowed from state %q", e.Transition, e.Current)
}

// PermissionDeniedError signals that the acting principal lacks the
// permission a transition requires.
type PermissionDeniedError struct {
	Transition string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("transition %q requires permission %q", e.Transition, e.Permission)
}

// ConstraintViolationError signals a storage-level uniqueness rule was hit,
// e.g. a second active contract for an asset that already carries one.
type ConstraintViolationError struct {
	Kind string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violated: %s", e.Kind)
}

// NotFoundError signals the referenced entity does not exist or the caller
// has no visibility of it.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

func IsPermissionDenied(err error) bool {
	var target *PermissionDeniedError
	return errors.As(err, &target)
}

func IsConstraintViolation(err error) bool {
	var target *ConstraintViolationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
