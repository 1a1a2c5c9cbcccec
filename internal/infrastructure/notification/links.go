package notification

import (
	"fmt"
	"net/url"
	"time"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/pkg/signer"
)

// SignedLinkBuilder builds the out-of-band links of the cancellation
// handshake. Links are HMAC-signed with an expiry, so possession of an
// unexpired link is the capability to act on it.
type SignedLinkBuilder struct {
	signer  *signer.Signer
	baseURL string
	ttl     time.Duration
}

// NewSignedLinkBuilder creates a link builder. baseURL must carry scheme
// and host without a trailing slash.
func NewSignedLinkBuilder(s *signer.Signer, baseURL string, ttl time.Duration) *SignedLinkBuilder {
	return &SignedLinkBuilder{
		signer:  s,
		baseURL: baseURL,
		ttl:     ttl,
	}
}

// ConfirmationLink is sent to the requester to confirm their
// cancellation.
func (b *SignedLinkBuilder) ConfirmationLink(requestID int64, token string, now time.Time) string {
	path := fmt.Sprintf("/api/v1/travel-requests/%d/confirm-cancellation", requestID)
	values := url.Values{"token": {token}}
	return b.signer.SignedURL(b.baseURL, path, values, b.ttl, now)
}

// ReviewLink is sent to admins to review a confirmed cancellation.
func (b *SignedLinkBuilder) ReviewLink(requestID int64, token string, now time.Time) string {
	path := fmt.Sprintf("/api/v1/admin/travel-requests/%d/cancellation/review", requestID)
	values := url.Values{"token": {token}}
	return b.signer.SignedURL(b.baseURL, path, values, b.ttl, now)
}

// Verify interface compliance
var _ port.LinkBuilder = (*SignedLinkBuilder)(nil)
