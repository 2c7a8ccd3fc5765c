package kinematics

import (
	"fmt"
	"math"
)

// Point is a Cartesian position in the arm's world frame, in millimeters.
// Points are immutable values; methods return new points.
type Point struct {
	X, Y float64
}

// String formats the point for logs and CLI output.
func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns the point scaled by the given factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Len returns the distance from the origin.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	return p.Sub(q).Len()
}

// ApproxEqual reports whether two points are equal within eps.
func (p Point) ApproxEqual(q Point, eps float64) bool {
	return p.DistanceTo(q) < eps
}
