// Package vision tracks the arm's green end-effector marker in a
// camera feed. Frames are thresholded in HSV space, the largest green
// blob becomes the detection, and a linear calibration converts its
// pixel centroid into workspace coordinates.
package vision

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// Detection is one tracked marker observation.
type Detection struct {
	// Pixel is the blob centroid in image coordinates.
	Pixel r2.Point

	// Area is the blob's contour area in pixels.
	Area float64
}

// Calibration maps image pixels to workspace coordinates. The mapping
// is linear per axis around a measured reference point.
type Calibration struct {
	// RefPixel is the image point whose workspace position is known,
	// typically the image center.
	RefPixel r2.Point

	// RefWorld is the workspace position of RefPixel.
	RefWorld kinematics.Point

	// PixelsPerUnitX and PixelsPerUnitY scale pixel offsets into
	// workspace units.
	PixelsPerUnitX float64
	PixelsPerUnitY float64
}

// DefaultCalibration centers the reference on a 640x480 image with a
// placeholder scale; real deployments measure their own.
func DefaultCalibration() Calibration {
	return Calibration{
		RefPixel:       r2.Point{X: 320, Y: 240},
		PixelsPerUnitX: 500,
		PixelsPerUnitY: 500,
	}
}

// Validate checks that the scales are usable.
func (c Calibration) Validate() error {
	if c.PixelsPerUnitX <= 0 {
		return fmt.Errorf("vision: pixels per unit x must be positive, got %v", c.PixelsPerUnitX)
	}
	if c.PixelsPerUnitY <= 0 {
		return fmt.Errorf("vision: pixels per unit y must be positive, got %v", c.PixelsPerUnitY)
	}
	return nil
}

// ToWorld converts a pixel position to workspace coordinates.
func (c Calibration) ToWorld(px r2.Point) kinematics.Point {
	return kinematics.Point{
		X: (px.X-c.RefPixel.X)/c.PixelsPerUnitX + c.RefWorld.X,
		Y: (px.Y-c.RefPixel.Y)/c.PixelsPerUnitY + c.RefWorld.Y,
	}
}
