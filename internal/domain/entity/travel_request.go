package entity

import "time"

// TravelRequest represents a trip request moving through the approval
// lifecycle. All status changes go through the service layer; fields are
// never mutated directly by callers.
type TravelRequest struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	ReturnDate    time.Time `json:"return_date"`
	Status        string    `json:"status"`

	CancellationReason      string     `json:"cancellation_reason,omitempty"`
	RejectionReason         string     `json:"rejection_reason,omitempty"`
	CancellationToken       string     `json:"-"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	CancellationConfirmedAt *time.Time `json:"cancellation_confirmed_at,omitempty"`
	CancellationRejectedAt  *time.Time `json:"cancellation_rejected_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// CanCancelDirectly reports whether the request can be canceled without
// the confirmation handshake: only before approval, and only while the
// departure date is still in the future.
func (r *TravelRequest) CanCancelDirectly(now time.Time) bool {
	return r.Status == StatusRequested && truncateToDate(r.DepartureDate).After(truncateToDate(now))
}

// CanRequestCancellation reports whether an approved request is still
// inside the cancellation window: departure not past and more than
// DirectCancellationWindowDays whole days away.
func (r *TravelRequest) CanRequestCancellation(now time.Time) bool {
	if r.Status != StatusApproved {
		return false
	}
	return DaysUntilDeparture(r.DepartureDate, now) > DirectCancellationWindowDays
}

// IsPendingCancellation reports whether the request awaits an admin
// decision on a confirmed cancellation.
func (r *TravelRequest) IsPendingCancellation() bool {
	return r.Status == StatusPendingCancellation
}

// DaysUntilDeparture returns the whole-day distance between now and the
// departure date. Both values are reduced to calendar dates first, so
// the time of day never influences the window. Negative when departure
// is past.
func DaysUntilDeparture(departure, now time.Time) int {
	d := truncateToDate(departure)
	n := truncateToDate(now)
	return int(d.Sub(n).Hours() / 24)
}

// truncateToDate reduces t to its calendar date. The date is read in
// t's own location but anchored in UTC, so dates taken from clocks in
// different zones always compare as exact multiples of 24 hours.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
