package path

import (
	"fmt"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// Waypoints is a piecewise-linear path over an ordered point list with
// equal time per segment. An open path has len(points)-1 segments and
// ends on the last point; a closed path adds the wrap segment back to
// the first point.
type Waypoints struct {
	points   []kinematics.Point
	closed   bool
	duration time.Duration
}

// NewWaypoints builds a waypoint path. At least one point and a positive
// duration are required. The point slice is copied.
func NewWaypoints(points []kinematics.Point, closed bool, total time.Duration) (*Waypoints, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("path: at least one waypoint is required")
	}
	if total <= 0 {
		return nil, fmt.Errorf("path: waypoint duration must be positive, got %v", total)
	}
	pts := make([]kinematics.Point, len(points))
	copy(pts, points)
	return &Waypoints{points: pts, closed: closed, duration: total}, nil
}

// Name returns "waypoints".
func (w *Waypoints) Name() string {
	return "waypoints"
}

// Duration returns the total path duration.
func (w *Waypoints) Duration() time.Duration {
	return w.duration
}

// Points returns a copy of the waypoint list.
func (w *Waypoints) Points() []kinematics.Point {
	pts := make([]kinematics.Point, len(w.points))
	copy(pts, w.points)
	return pts
}

// Closed reports whether the path wraps back to its first point.
func (w *Waypoints) Closed() bool {
	return w.closed
}

// Evaluate returns the interpolated point at time t. Time past the
// duration clamps to the path's end point.
func (w *Waypoints) Evaluate(t time.Duration) kinematics.Point {
	n := len(w.points)
	if n == 1 {
		return w.points[0]
	}
	if t < 0 {
		t = 0
	}
	if t > w.duration {
		t = w.duration
	}

	segs := n - 1
	if w.closed {
		segs = n
	}
	seg := w.duration / time.Duration(segs)
	if seg <= 0 {
		return w.points[0]
	}
	k := int(t / seg)
	if k > segs-1 {
		k = segs - 1
	}
	u := float64(t-time.Duration(k)*seg) / float64(seg)

	from := w.points[k]
	to := w.points[(k+1)%n]
	return kinematics.Point{
		X: lerp(from.X, to.X, u),
		Y: lerp(from.Y, to.Y, u),
	}
}

// IsComplete returns true once the full duration has elapsed.
func (w *Waypoints) IsComplete(t time.Duration) bool {
	return t >= w.duration
}
