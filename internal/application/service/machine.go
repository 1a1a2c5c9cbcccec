package service

import (
	"time"

	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/domain/lifecycle"
)

// buildMachine wires the travel request lifecycle edges for one request
// at one point in time. Guards close over the request and clock reading,
// so firing a trigger both validates the edge and the time-window
// policy.
//
//	requested  --approve/reject-------------------> approved/rejected
//	requested  --cancel_directly [departure future]-> canceled
//	approved   --request_cancellation [>2 days out]-> awaiting_cancellation_confirmation
//	awaiting   --confirm_cancellation--------------> pending_cancellation
//	pending    --approve_cancellation--------------> canceled
//	pending    --reject_cancellation---------------> rejected
func buildMachine(request *entity.TravelRequest, now time.Time) lifecycle.StateMachine {
	b := lifecycle.NewBuilder()

	b.Configure(lifecycle.StateRequested).
		Permit(lifecycle.TriggerApprove, lifecycle.StateApproved).
		Permit(lifecycle.TriggerReject, lifecycle.StateRejected).
		PermitIf(lifecycle.TriggerCancelDirectly, lifecycle.StateCanceled, func() bool {
			return request.CanCancelDirectly(now)
		})

	b.Configure(lifecycle.StateApproved).
		PermitIf(lifecycle.TriggerRequestCancellation, lifecycle.StateAwaitingCancellationConfirmation, func() bool {
			return request.CanRequestCancellation(now)
		})

	b.Configure(lifecycle.StateAwaitingCancellationConfirmation).
		Permit(lifecycle.TriggerConfirmCancellation, lifecycle.StatePendingCancellation)

	b.Configure(lifecycle.StatePendingCancellation).
		Permit(lifecycle.TriggerApproveCancellation, lifecycle.StateCanceled).
		Permit(lifecycle.TriggerRejectCancellation, lifecycle.StateRejected)

	return b.Build(lifecycle.State(request.Status))
}
