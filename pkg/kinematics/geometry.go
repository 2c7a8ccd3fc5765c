package kinematics

import (
	"fmt"
	"math"
)

// Geometry describes the fixed link lengths and pivot separation of the
// arm. It is initialized once at startup and never mutated; multiple arms
// with different geometries can coexist.
type Geometry struct {
	// Link1 and Link2 are the proximal and distal link lengths in mm.
	// Both chains share the same link lengths in this design.
	Link1 float64
	Link2 float64

	// PivotOffset is the distance separating each shoulder pivot from
	// the nominal origin. Chain A's pivot sits offset along X, chain B's
	// along Y.
	PivotOffset float64
}

// DefaultGeometry returns the geometry of the shipped arm.
func DefaultGeometry() Geometry {
	return Geometry{
		Link1:       92.2,
		Link2:       80.24,
		PivotOffset: 25.0,
	}
}

// Validate checks the geometry invariants.
func (g Geometry) Validate() error {
	if g.Link1 <= 0 {
		return fmt.Errorf("kinematics: link1 length must be positive, got %v", g.Link1)
	}
	if g.Link2 <= 0 {
		return fmt.Errorf("kinematics: link2 length must be positive, got %v", g.Link2)
	}
	if g.PivotOffset < 0 {
		return fmt.Errorf("kinematics: pivot offset must be non-negative, got %v", g.PivotOffset)
	}
	return nil
}

// MaxReach returns the fully extended reach of one chain from its pivot.
func (g Geometry) MaxReach() float64 {
	return g.Link1 + g.Link2
}

// MinReach returns the fully folded reach of one chain from its pivot.
func (g Geometry) MinReach() float64 {
	return math.Abs(g.Link1 - g.Link2)
}
