package lifecycle

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerApprove             Trigger = "approve"
	TriggerReject              Trigger = "reject"
	TriggerCancelDirectly      Trigger = "cancel_directly"
	TriggerRequestCancellation Trigger = "request_cancellation"
	TriggerConfirmCancellation Trigger = "confirm_cancellation"
	TriggerApproveCancellation Trigger = "approve_cancellation"
	TriggerRejectCancellation  Trigger = "reject_cancellation"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
