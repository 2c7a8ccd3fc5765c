package path

import (
	"testing"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

func TestRectangleCornerTransitions(t *testing.T) {
	r := DefaultSquare(5 * time.Second)

	cases := []struct {
		at   time.Duration
		want kinematics.Point
	}{
		{0, kinematics.Point{X: 137, Y: 100}},
		{1250 * time.Millisecond, kinematics.Point{X: 137, Y: 126}},
		{2500 * time.Millisecond, kinematics.Point{X: 111, Y: 126}},
		{3750 * time.Millisecond, kinematics.Point{X: 111, Y: 100}},
		{5 * time.Second, kinematics.Point{X: 137, Y: 100}},
	}
	for _, c := range cases {
		got := r.Evaluate(c.at)
		if !got.ApproxEqual(c.want, 1e-9) {
			t.Errorf("Evaluate(%v): expected %s, got %s", c.at, c.want, got)
		}
	}
}

func TestRectangleHalfOpenBoundaries(t *testing.T) {
	r := DefaultSquare(5 * time.Second)

	// The last tick before a corner still belongs to the earlier edge.
	before := r.Evaluate(1249 * time.Millisecond)
	if before.X != 137 {
		t.Errorf("Expected x held at 137 just before the corner, got %v", before.X)
	}
	if before.Y >= 126 {
		t.Errorf("Expected y still short of 126 just before the corner, got %v", before.Y)
	}

	// The corner tick itself starts the next edge.
	at := r.Evaluate(1250 * time.Millisecond)
	if at.Y != 126 {
		t.Errorf("Expected y held at 126 at the corner tick, got %v", at.Y)
	}
}

func TestRectangleHeldCoordinateExact(t *testing.T) {
	r := DefaultSquare(5 * time.Second)

	// Mid-edge samples: the non-sweeping coordinate must be bit-exact.
	if got := r.Evaluate(625 * time.Millisecond); got.X != 137 {
		t.Errorf("Edge BR-TR: expected x exactly 137, got %v", got.X)
	}
	if got := r.Evaluate(1875 * time.Millisecond); got.Y != 126 {
		t.Errorf("Edge TR-TL: expected y exactly 126, got %v", got.Y)
	}
	if got := r.Evaluate(3125 * time.Millisecond); got.X != 111 {
		t.Errorf("Edge TL-BL: expected x exactly 111, got %v", got.X)
	}
	if got := r.Evaluate(4375 * time.Millisecond); got.Y != 100 {
		t.Errorf("Edge BL-BR: expected y exactly 100, got %v", got.Y)
	}
}

func TestRectangleStaysInBounds(t *testing.T) {
	r := DefaultSquare(5 * time.Second)

	first := r.Evaluate(0)
	if !first.ApproxEqual(kinematics.Point{X: 137, Y: 100}, 1e-9) {
		t.Errorf("Expected first sample at (137, 100), got %s", first)
	}

	for tick := time.Duration(0); tick < r.Duration(); tick += 10 * time.Millisecond {
		p := r.Evaluate(tick)
		if p.X < 111 || p.X > 137 || p.Y < 100 || p.Y > 126 {
			t.Fatalf("Sample at %v outside bounding box: %s", tick, p)
		}
	}
}

func TestRectangleIsComplete(t *testing.T) {
	r := DefaultSquare(5 * time.Second)

	if r.IsComplete(4999 * time.Millisecond) {
		t.Error("Expected loop incomplete before total duration")
	}
	if !r.IsComplete(5 * time.Second) {
		t.Error("Expected loop complete at total duration")
	}
}

func TestNewRectangleValidation(t *testing.T) {
	br := kinematics.Point{X: 137, Y: 100}
	tr := kinematics.Point{X: 137, Y: 126}
	tl := kinematics.Point{X: 111, Y: 126}
	bl := kinematics.Point{X: 111, Y: 100}

	if _, err := NewRectangle(br, tr, tl, bl, 0); err == nil {
		t.Error("Expected error for zero duration")
	}

	skewed := kinematics.Point{X: 135, Y: 126} // breaks the BR/TR shared x
	if _, err := NewRectangle(br, skewed, tl, bl, time.Second); err == nil {
		t.Error("Expected error for non-axis-aligned corners")
	}

	if _, err := NewRectangle(br, tr, tl, bl, time.Second); err != nil {
		t.Errorf("Expected valid rectangle, got error: %v", err)
	}
}
