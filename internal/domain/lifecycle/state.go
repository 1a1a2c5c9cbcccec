package lifecycle

// State represents a travel request state in the approval lifecycle
type State string

const (
	StateRequested                        State = "requested"
	StateApproved                         State = "approved"
	StateRejected                         State = "rejected"
	StateCanceled                         State = "canceled"
	StateAwaitingCancellationConfirmation State = "awaiting_cancellation_confirmation"
	StatePendingCancellation              State = "pending_cancellation"
)

var validStates = map[State]bool{
	StateRequested:                        true,
	StateApproved:                         true,
	StateRejected:                         true,
	StateCanceled:                         true,
	StateAwaitingCancellationConfirmation: true,
	StatePendingCancellation:              true,
}

var terminalStates = map[State]bool{
	StateCanceled: true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
