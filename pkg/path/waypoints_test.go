package path

import (
	"testing"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

func TestWaypointsOpenPath(t *testing.T) {
	w, err := NewWaypoints([]kinematics.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
	}, false, time.Second)
	if err != nil {
		t.Fatalf("NewWaypoints failed: %v", err)
	}

	if got := w.Evaluate(500 * time.Millisecond); !got.ApproxEqual(kinematics.Point{X: 5, Y: 0}, 1e-9) {
		t.Errorf("Expected midpoint (5, 0), got %s", got)
	}
	if got := w.Evaluate(time.Second); !got.ApproxEqual(kinematics.Point{X: 10, Y: 0}, 1e-9) {
		t.Errorf("Expected end point (10, 0), got %s", got)
	}
	if got := w.Evaluate(2 * time.Second); !got.ApproxEqual(kinematics.Point{X: 10, Y: 0}, 1e-9) {
		t.Errorf("Expected clamp to end point past duration, got %s", got)
	}
}

func TestWaypointsClosedPath(t *testing.T) {
	pts := []kinematics.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	}
	w, err := NewWaypoints(pts, true, 3*time.Second)
	if err != nil {
		t.Fatalf("NewWaypoints failed: %v", err)
	}

	for i, want := range pts {
		at := time.Duration(i) * time.Second
		if got := w.Evaluate(at); !got.ApproxEqual(want, 1e-9) {
			t.Errorf("Evaluate(%v): expected %s, got %s", at, want, got)
		}
	}

	// The wrap segment returns to the first point.
	if got := w.Evaluate(3 * time.Second); !got.ApproxEqual(pts[0], 1e-9) {
		t.Errorf("Expected loop closed back to %s, got %s", pts[0], got)
	}
	mid := w.Evaluate(2500 * time.Millisecond)
	if !mid.ApproxEqual(kinematics.Point{X: 5, Y: 5}, 1e-9) {
		t.Errorf("Expected wrap segment midpoint (5, 5), got %s", mid)
	}
}

func TestWaypointsSinglePoint(t *testing.T) {
	w, err := NewWaypoints([]kinematics.Point{{X: 3, Y: 4}}, false, time.Second)
	if err != nil {
		t.Fatalf("NewWaypoints failed: %v", err)
	}

	for _, at := range []time.Duration{0, 500 * time.Millisecond, 2 * time.Second} {
		if got := w.Evaluate(at); !got.ApproxEqual(kinematics.Point{X: 3, Y: 4}, 1e-9) {
			t.Errorf("Evaluate(%v): expected (3, 4), got %s", at, got)
		}
	}
}

func TestWaypointsValidation(t *testing.T) {
	if _, err := NewWaypoints(nil, false, time.Second); err == nil {
		t.Error("Expected error for empty waypoint list")
	}
	if _, err := NewWaypoints([]kinematics.Point{{X: 1, Y: 1}}, false, 0); err == nil {
		t.Error("Expected error for zero duration")
	}
}

func TestWaypointsCopiesInput(t *testing.T) {
	pts := []kinematics.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	w, err := NewWaypoints(pts, false, time.Second)
	if err != nil {
		t.Fatalf("NewWaypoints failed: %v", err)
	}

	pts[0] = kinematics.Point{X: 99, Y: 99}
	if got := w.Evaluate(0); !got.ApproxEqual(kinematics.Point{X: 1, Y: 1}, 1e-9) {
		t.Errorf("Expected path unaffected by caller mutation, got %s", got)
	}
}

// A closed waypoint path over the square corners must trace the same
// loop as the rectangle specialization.
func TestWaypointsMatchesRectangle(t *testing.T) {
	r := DefaultSquare(5 * time.Second)
	corners := r.Corners()
	w, err := NewWaypoints(corners[:], true, 5*time.Second)
	if err != nil {
		t.Fatalf("NewWaypoints failed: %v", err)
	}

	for tick := time.Duration(0); tick < 5*time.Second; tick += 10 * time.Millisecond {
		rp := r.Evaluate(tick)
		wp := w.Evaluate(tick)
		if !rp.ApproxEqual(wp, 1e-9) {
			t.Fatalf("Paths diverge at %v: rectangle %s, waypoints %s", tick, rp, wp)
		}
	}
}
