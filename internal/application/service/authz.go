package service

import "github.com/traveldesk/travel-approval/internal/domain/entity"

// Authorization predicates, evaluated before a transition is attempted.
// A failed predicate yields a ForbiddenError, which is a different error
// taxon than a state-machine guard failure.

// CanView allows the requester and admins to see a request.
func CanView(actor *entity.User, request *entity.TravelRequest) bool {
	return actor.ID == request.UserID || actor.IsAdmin()
}

// CanCreate allows any authenticated actor to create requests.
func CanCreate(actor *entity.User) bool {
	return actor != nil
}

// CanUpdateStatus allows only admins to approve or reject.
func CanUpdateStatus(actor *entity.User) bool {
	return actor.IsAdmin()
}

// CanInitiateCancellation allows the requester or an admin to start a
// cancellation.
func CanInitiateCancellation(actor *entity.User, request *entity.TravelRequest) bool {
	return actor.IsAdmin() || actor.ID == request.UserID
}

// CanConfirmCancellation mirrors CanInitiateCancellation for the
// token-confirmation step.
func CanConfirmCancellation(actor *entity.User, request *entity.TravelRequest) bool {
	return actor.IsAdmin() || actor.ID == request.UserID
}

// CanApproveCancellation allows only admins to close a handshake.
func CanApproveCancellation(actor *entity.User) bool {
	return actor.IsAdmin()
}

// CanRejectCancellation allows only admins to close a handshake.
func CanRejectCancellation(actor *entity.User) bool {
	return actor.IsAdmin()
}
