// Package servo maps solved joint angles onto integer actuator command
// values, applying per-joint direction, offset and output-range clamping.
package servo

import (
	"fmt"
	"math"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// JointID identifies one of the two shoulder joints on the actuator bus.
type JointID int

// The two shoulder joints. Chain A drives joint A, chain B joint B.
const (
	JointA JointID = 1
	JointB JointID = 2
)

// String returns a short label for logs.
func (j JointID) String() string {
	switch j {
	case JointA:
		return "A"
	case JointB:
		return "B"
	default:
		return fmt.Sprintf("joint(%d)", int(j))
	}
}

// Mapping converts a solved angle in degrees into a command value for one
// joint. It is fixed configuration, applied after solving, and never
// mutated at runtime.
type Mapping struct {
	// Direction flips the angle sign for joints mounted mirrored. Must
	// be +1 or -1.
	Direction int

	// OffsetDeg shifts the solved angle into the actuator's frame.
	OffsetDeg float64

	// Min and Max bound the command value. Results outside are clamped,
	// never wrapped or rejected, so an actuator is never commanded
	// outside its physical range.
	Min, Max int
}

// DefaultMapping returns the identity mapping onto a standard 0-180
// hobby-servo range.
func DefaultMapping() Mapping {
	return Mapping{Direction: 1, OffsetDeg: 0, Min: 0, Max: 180}
}

// CenteredMapping returns a mapping onto a zero-centered degree range,
// the frame used by bus servos that normalize around their center
// position.
func CenteredMapping() Mapping {
	return Mapping{Direction: 1, OffsetDeg: -90, Min: -90, Max: 90}
}

// Validate checks the mapping invariants.
func (m Mapping) Validate() error {
	if m.Direction != 1 && m.Direction != -1 {
		return fmt.Errorf("servo: direction must be +1 or -1, got %d", m.Direction)
	}
	if m.Min >= m.Max {
		return fmt.Errorf("servo: command range [%d, %d] is empty", m.Min, m.Max)
	}
	return nil
}

// Command maps one solved angle to a command value. Rounding is
// half-away-from-zero; the result is always within [Min, Max].
func (m Mapping) Command(angleDeg float64) int {
	value := int(math.Round(float64(m.Direction)*angleDeg + m.OffsetDeg))
	if value < m.Min {
		return m.Min
	}
	if value > m.Max {
		return m.Max
	}
	return value
}

// Pair is one command value per joint, ready for dispatch.
type Pair struct {
	A, B int
}

// String formats the pair for logs.
func (p Pair) String() string {
	return fmt.Sprintf("A=%d B=%d", p.A, p.B)
}

// MapAngles applies both joint mappings to a solved angle pair.
func MapAngles(angles kinematics.Angles, a, b Mapping) Pair {
	return Pair{
		A: a.Command(angles.A),
		B: b.Command(angles.B),
	}
}
