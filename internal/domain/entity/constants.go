package entity

// Status constants for TravelRequest
const (
	StatusRequested                        = "requested"
	StatusApproved                         = "approved"
	StatusRejected                         = "rejected"
	StatusCanceled                         = "canceled"
	StatusAwaitingCancellationConfirmation = "awaiting_cancellation_confirmation"
	StatusPendingCancellation              = "pending_cancellation"
)

// Role constants for User
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Notification status constants
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// DirectCancellationWindowDays is the minimum number of whole days
// between now and departure for an approved request to still be
// cancellable through the handshake.
const DirectCancellationWindowDays = 2
