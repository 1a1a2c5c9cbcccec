package port

import (
	"context"
	"time"

	"github.com/traveldesk/travel-approval/internal/domain/entity"
)

// Notifier delivers lifecycle messages to users. All methods are
// fire-and-forget: implementations log failures and never surface them
// to the caller, because the state change has already committed.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, request *entity.TravelRequest)
	NotifyCancellationRequested(ctx context.Context, request *entity.TravelRequest, reviewLink string)
	NotifyCancellationApproved(ctx context.Context, request *entity.TravelRequest)
	NotifyCancellationRejected(ctx context.Context, request *entity.TravelRequest, reason string)
}

// Clock supplies the current time. Injected so window guards are
// testable with a fixed time.
type Clock interface {
	Now() time.Time
}

// TokenProvider generates opaque cancellation tokens
type TokenProvider interface {
	Generate(requestID int64, now time.Time) string
}

// LinkBuilder produces the signed out-of-band links of the cancellation
// handshake.
type LinkBuilder interface {
	ConfirmationLink(requestID int64, token string, now time.Time) string
	ReviewLink(requestID int64, token string, now time.Time) string
}

// Cache is a byte-oriented read-through cache over listings and lookups.
// DeletePrefix drops every key under a prefix; the write path calls it
// synchronously after each mutation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix string)
}

// Mailer delivers a single message to an address. Used by the
// notification worker to drain the outbox.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
