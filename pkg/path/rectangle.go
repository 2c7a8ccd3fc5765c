package path

import (
	"fmt"
	"math"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// alignEps is the tolerance for the axis-alignment check on rectangle
// corners.
const alignEps = 1e-9

// Rectangle is a closed axis-aligned loop traversed in a fixed corner
// order: bottom-right, top-right, top-left, bottom-left, then implicitly
// back to bottom-right. The total duration splits evenly across the four
// edges. Within an edge only the coordinate that changes along that edge
// is interpolated; the other is held at the edge's boundary value, so it
// never drifts.
type Rectangle struct {
	corners  [4]kinematics.Point // BR, TR, TL, BL
	duration time.Duration
}

// NewRectangle builds a rectangle path from its four corners in
// traversal order. Corners must form an axis-aligned rectangle and the
// duration must be positive.
func NewRectangle(br, tr, tl, bl kinematics.Point, total time.Duration) (*Rectangle, error) {
	if total <= 0 {
		return nil, fmt.Errorf("path: rectangle duration must be positive, got %v", total)
	}
	if math.Abs(br.X-tr.X) > alignEps || math.Abs(tr.Y-tl.Y) > alignEps ||
		math.Abs(tl.X-bl.X) > alignEps || math.Abs(bl.Y-br.Y) > alignEps {
		return nil, fmt.Errorf("path: corners %s %s %s %s are not an axis-aligned rectangle",
			br, tr, tl, bl)
	}
	return &Rectangle{
		corners:  [4]kinematics.Point{br, tr, tl, bl},
		duration: total,
	}, nil
}

// DefaultSquare returns the 26x26 characterization square in the right
// half of the workspace, the loop used for repeatability runs. It
// panics when total is not positive; validate caller-supplied durations
// with NewRectangle instead.
func DefaultSquare(total time.Duration) *Rectangle {
	r, err := NewRectangle(
		kinematics.Point{X: 137, Y: 100},
		kinematics.Point{X: 137, Y: 126},
		kinematics.Point{X: 111, Y: 126},
		kinematics.Point{X: 111, Y: 100},
		total,
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns "rectangle".
func (r *Rectangle) Name() string {
	return "rectangle"
}

// Duration returns the total loop duration.
func (r *Rectangle) Duration() time.Duration {
	return r.duration
}

// Corners returns the corners in traversal order (BR, TR, TL, BL).
func (r *Rectangle) Corners() [4]kinematics.Point {
	return r.corners
}

// Evaluate returns the point on the loop at time t. Each edge owns the
// half-open interval [k*segTime, (k+1)*segTime), so the boundary sample
// between adjacent edges is counted once. Past the total duration the
// loop has closed and the bottom-right corner is returned.
func (r *Rectangle) Evaluate(t time.Duration) kinematics.Point {
	if t < 0 {
		t = 0
	}
	if t >= r.duration {
		return r.corners[0]
	}

	seg := r.duration / 4
	if seg <= 0 {
		return r.corners[0]
	}
	k := int(t / seg)
	if k > 3 {
		k = 3
	}
	u := float64(t-time.Duration(k)*seg) / float64(seg)

	from := r.corners[k]
	to := r.corners[(k+1)%4]
	switch k {
	case 0, 2: // vertical edges: x held, y sweeps
		return kinematics.Point{X: from.X, Y: lerp(from.Y, to.Y, u)}
	default: // horizontal edges: y held, x sweeps
		return kinematics.Point{X: lerp(from.X, to.X, u), Y: from.Y}
	}
}

// IsComplete returns true once the loop has closed.
func (r *Rectangle) IsComplete(t time.Duration) bool {
	return t >= r.duration
}
