package service

import "fmt"

// NotFoundError indicates the referenced travel request does not exist
// (or has been soft-deleted). Distinct from ForbiddenError so callers
// can tell "doesn't exist" from "exists but you can't touch it".
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("travel request %d not found", e.ID)
}

// ForbiddenError indicates the actor lacks permission for the operation
// on this request.
type ForbiddenError struct {
	Action string
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("forbidden: %s: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// InvalidTransitionError indicates the request exists and the actor is
// authorized, but the current state or a guard forbids this transition
// (wrong state, token mismatch, cancellation window missed).
type InvalidTransitionError struct {
	Current   string
	Attempted string
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q via %q: %s", e.Current, e.Attempted, e.Reason)
}

// ValidationError indicates logically invalid input that must not be
// persisted, such as a return date before departure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// StorageError wraps a repository failure. Not retried here; surfaced
// as an internal error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
