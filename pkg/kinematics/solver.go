// Package kinematics implements the closed-form inverse kinematics for a
// two-chain planar arm: two shoulder pivots, offset from the origin along
// perpendicular axes, each driving a 2-link chain, with both chains meeting
// at a shared end-effector point.
package kinematics

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnreachable is returned when the target lies outside the reachability
// annulus of at least one chain.
var ErrUnreachable = errors.New("kinematics: target unreachable")

// Angles holds the solved shoulder angles in degrees. A is the chain whose
// pivot is offset along X, B the chain whose pivot is offset along Y. Only
// meaningful when Solve succeeded.
type Angles struct {
	A, B float64
}

// String formats the angles for logs.
func (a Angles) String() string {
	return fmt.Sprintf("A=%.2f° B=%.2f°", a.A, a.B)
}

// Solve computes both shoulder angles for the given world-frame target.
// It is a pure function: same target and geometry always yield the same
// angles. Either chain failing its reachability check fails the whole
// solve, and no partial angles are returned.
func (g Geometry) Solve(target Point) (Angles, error) {
	a, err := g.chainAngle("A", target.X-g.PivotOffset, target.Y, -1)
	if err != nil {
		return Angles{}, err
	}
	b, err := g.chainAngle("B", target.X, target.Y-g.PivotOffset, +1)
	if err != nil {
		return Angles{}, err
	}
	return Angles{A: a, B: b}, nil
}

// Reachable reports whether both chains can reach the target.
func (g Geometry) Reachable(target Point) bool {
	_, err := g.Solve(target)
	return err == nil
}

// chainAngle solves one 2-link chain in its pivot-local frame (xl, yl).
// elbowSign is the chain's fixed elbow configuration: -1 for chain A,
// +1 for chain B. The asymmetry matches the physical mounting and must
// not be changed independently of the hardware.
func (g Geometry) chainAngle(chain string, xl, yl, elbowSign float64) (float64, error) {
	d := math.Hypot(xl, yl)
	if d > g.MaxReach() || d < g.MinReach() {
		return 0, fmt.Errorf("chain %s: distance %.3f outside reach [%.3f, %.3f]: %w",
			chain, d, g.MinReach(), g.MaxReach(), ErrUnreachable)
	}

	// Law of cosines for the angle between the pivot-to-target line and
	// link1. The clamp absorbs floating-point overshoot at the exact
	// reachability boundary, where the ratio may land just outside [-1, 1].
	var cosTheta float64
	if d == 0 {
		// Passes the reach check only when the links fold flat; the
		// ratio is 0/0 there and its limit is 0.
		cosTheta = 0
	} else {
		cosTheta = (g.Link2*g.Link2 - g.Link1*g.Link1 - d*d) / (-2 * g.Link1 * d)
	}
	theta := math.Acos(clamp(cosTheta, -1, 1))

	return degrees(math.Atan2(yl, xl) + elbowSign*theta), nil
}
