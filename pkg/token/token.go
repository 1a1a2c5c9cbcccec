package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider generates opaque cancellation tokens. A token is derived from
// the request id, the current timestamp and a random nonce, so it cannot
// be guessed and is unique per handshake.
type Provider struct{}

// NewProvider creates a token provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Generate returns a hex-encoded token for the given request id.
func (p *Provider) Generate(requestID int64, now time.Time) string {
	seed := fmt.Sprintf("%d:%d:%s", requestID, now.UnixNano(), uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
