// Package actuator abstracts the hardware that receives final joint
// commands. The motion layer only ever sees this interface; backends
// exist for feetech bus servos and for tests.
package actuator

import (
	"context"

	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

// Actuator receives mapped command values, one joint at a time. Dispatch
// is assumed immediate: a nil return means the command was handed to the
// transport, not that the joint finished moving.
type Actuator interface {
	// SetPosition commands one joint to the given value.
	SetPosition(ctx context.Context, joint servo.JointID, value int) error

	// Close releases the underlying transport.
	Close() error
}

// Verify implementations at compile time.
var (
	_ Actuator = (*Mock)(nil)
	_ Actuator = (*Feetech)(nil)
)
