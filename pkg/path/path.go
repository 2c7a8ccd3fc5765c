// Package path provides time-indexed planar paths for the arm's
// end-effector. A Path maps elapsed time to a target point; runners in
// pkg/motion sample a Path at a fixed cadence and feed each point
// through the solver. Rectangle is the characterization loop, Waypoints
// the general piecewise-linear form, and Timeline a pre-sampled path
// that can be stored to and loaded from CSV.
package path

import (
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// Path describes a target trajectory over elapsed time.
type Path interface {
	// Name returns the path identifier (for logging).
	Name() string

	// Duration returns the total duration of the path.
	Duration() time.Duration

	// Evaluate returns the target point at time t since path start.
	Evaluate(t time.Duration) kinematics.Point

	// IsComplete returns true when the path has finished.
	IsComplete(t time.Duration) bool
}

// lerp performs linear interpolation.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
