package entity

import "time"

// Notification is an outbox row. The service records a notification
// after a state change commits; a background worker delivers it and
// marks the outcome. Delivery is at-least-once with no ordering
// guarantee.
type Notification struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Link         string     `json:"link,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
