package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not defined for the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every transition for a trigger is blocked by its guard
	ErrGuardFailed = errors.New("guard condition failed")
)
