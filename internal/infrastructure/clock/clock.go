// Package clock provides the production Clock implementation. Services
// take port.Clock so the cancellation window guards can be tested with a
// fixed time.
package clock

import (
	"time"

	"github.com/traveldesk/travel-approval/internal/application/port"
)

// System reads the wall clock
type System struct{}

// NewSystem creates the wall-clock Clock
func NewSystem() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now()
}

// Verify interface compliance
var _ port.Clock = System{}
