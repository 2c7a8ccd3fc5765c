package kinematics

import (
	"errors"
	"math"
	"testing"
)

func TestSolve_KnownTarget(t *testing.T) {
	g := DefaultGeometry()
	target := Point{X: 120.0, Y: 105.0}

	angles, err := g.Solve(target)
	if err != nil {
		t.Fatalf("Solve(%v) failed: %v", target, err)
	}

	if math.IsNaN(angles.A) || math.IsNaN(angles.B) {
		t.Fatalf("Expected finite angles, got %v", angles)
	}
	if angles.A < -180 || angles.A > 180 {
		t.Errorf("Chain A angle %.4f outside [-180, 180]", angles.A)
	}
	if angles.B < -180 || angles.B > 180 {
		t.Errorf("Chain B angle %.4f outside [-180, 180]", angles.B)
	}

	// Reference values worked out by hand from the closed-form solution.
	if absf(angles.A-15.74) > 0.1 {
		t.Errorf("Expected chain A near 15.74°, got %.4f", angles.A)
	}
	if absf(angles.B-64.41) > 0.1 {
		t.Errorf("Expected chain B near 64.41°, got %.4f", angles.B)
	}

	checkChainSolution(t, g, target.X-g.PivotOffset, target.Y, angles.A)
	checkChainSolution(t, g, target.X, target.Y-g.PivotOffset, angles.B)
}

func TestSolve_SweepReachableTargets(t *testing.T) {
	g := DefaultGeometry()

	// All targets sit inside both chains' reachability annuli.
	targets := []Point{
		{120, 105},
		{137, 100},
		{137, 126},
		{111, 126},
		{111, 100},
		{100, 50},
		{60, 80},
	}

	for _, target := range targets {
		angles, err := g.Solve(target)
		if err != nil {
			t.Errorf("Solve(%v) failed: %v", target, err)
			continue
		}
		if math.IsNaN(angles.A) || math.IsInf(angles.A, 0) ||
			math.IsNaN(angles.B) || math.IsInf(angles.B, 0) {
			t.Errorf("Solve(%v) returned non-finite angles %v", target, angles)
			continue
		}
		if angles.A < -180 || angles.A > 180 || angles.B < -180 || angles.B > 180 {
			t.Errorf("Solve(%v) angles %v outside [-180, 180]", target, angles)
		}
		checkChainSolution(t, g, target.X-g.PivotOffset, target.Y, angles.A)
		checkChainSolution(t, g, target.X, target.Y-g.PivotOffset, angles.B)
	}
}

func TestSolve_UnreachableFar(t *testing.T) {
	g := DefaultGeometry()

	angles, err := g.Solve(Point{X: 500, Y: 500})
	if err == nil {
		t.Fatal("Expected Unreachable for far target")
	}
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("Expected ErrUnreachable, got %v", err)
	}
	if angles != (Angles{}) {
		t.Errorf("Expected zero angles on failure, got %v", angles)
	}
}

func TestSolve_UnreachableInsideAnnulus(t *testing.T) {
	g := DefaultGeometry()

	// Pivot-local distance for chain A is 5, below |link1-link2| = 11.96.
	_, err := g.Solve(Point{X: g.PivotOffset + 5, Y: 0})
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("Expected ErrUnreachable for folded target, got %v", err)
	}
}

func TestSolve_ExactBoundaries(t *testing.T) {
	// Integer link lengths keep the boundary distances exact in floating
	// point, so these targets land on the annulus edge with no rounding.
	g := Geometry{Link1: 100, Link2: 75, PivotOffset: 0}

	fullyExtended := Point{X: 175, Y: 0} // d == link1+link2 for both chains
	angles, err := g.Solve(fullyExtended)
	if err != nil {
		t.Fatalf("Solve at full extension failed: %v", err)
	}
	if absf(angles.A) > 1e-9 || absf(angles.B) > 1e-9 {
		t.Errorf("Expected 0° at full extension along X, got %v", angles)
	}

	fullyFolded := Point{X: 25, Y: 0} // d == |link1-link2| for both chains
	angles, err = g.Solve(fullyFolded)
	if err != nil {
		t.Fatalf("Solve at full fold failed: %v", err)
	}
	if absf(angles.A) > 1e-9 || absf(angles.B) > 1e-9 {
		t.Errorf("Expected 0° at full fold along X, got %v", angles)
	}

	extendedUp := Point{X: 0, Y: 175}
	angles, err = g.Solve(extendedUp)
	if err != nil {
		t.Fatalf("Solve at full extension along Y failed: %v", err)
	}
	if absf(angles.A-90) > 1e-9 || absf(angles.B-90) > 1e-9 {
		t.Errorf("Expected 90° at full extension along Y, got %v", angles)
	}
}

func TestSolve_BoundaryClampNeverNaN(t *testing.T) {
	// Non-representable link lengths make the law-of-cosines ratio land
	// within a few ulps of 1 at the boundary; the clamp must keep acos
	// in its domain.
	g := Geometry{Link1: 92.2, Link2: 80.24, PivotOffset: 0}

	angles, err := g.Solve(Point{X: g.MaxReach(), Y: 0})
	if err != nil {
		t.Fatalf("Solve at computed max reach failed: %v", err)
	}
	if math.IsNaN(angles.A) || math.IsNaN(angles.B) {
		t.Errorf("Expected finite angles at reach boundary, got %v", angles)
	}

	angles, err = g.Solve(Point{X: g.MinReach(), Y: 0})
	if err != nil {
		t.Fatalf("Solve at computed min reach failed: %v", err)
	}
	if math.IsNaN(angles.A) || math.IsNaN(angles.B) {
		t.Errorf("Expected finite angles at fold boundary, got %v", angles)
	}
}

func TestSolve_PivotCoincidentTarget(t *testing.T) {
	// Equal links fold flat onto the pivot; d == 0 must still produce
	// finite angles.
	g := Geometry{Link1: 80, Link2: 80, PivotOffset: 0}

	angles, err := g.Solve(Point{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("Solve at origin failed: %v", err)
	}
	if math.IsNaN(angles.A) || math.IsNaN(angles.B) {
		t.Errorf("Expected finite angles for pivot-coincident target, got %v", angles)
	}
}

func TestSolve_Idempotent(t *testing.T) {
	g := DefaultGeometry()
	target := Point{X: 120, Y: 105}

	first, err := g.Solve(target)
	if err != nil {
		t.Fatalf("First solve failed: %v", err)
	}
	second, err := g.Solve(target)
	if err != nil {
		t.Fatalf("Second solve failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical angles, got %v then %v", first, second)
	}
}

func TestReachable(t *testing.T) {
	g := DefaultGeometry()

	if !g.Reachable(Point{X: 120, Y: 105}) {
		t.Error("Expected (120, 105) to be reachable")
	}
	if g.Reachable(Point{X: 500, Y: 500}) {
		t.Error("Expected (500, 500) to be unreachable")
	}
}

func TestGeometry_Validate(t *testing.T) {
	if err := DefaultGeometry().Validate(); err != nil {
		t.Errorf("Default geometry should validate, got %v", err)
	}

	bad := []Geometry{
		{Link1: 0, Link2: 80, PivotOffset: 25},
		{Link1: 92, Link2: -1, PivotOffset: 25},
		{Link1: 92, Link2: 80, PivotOffset: -5},
	}
	for _, g := range bad {
		if err := g.Validate(); err == nil {
			t.Errorf("Expected validation error for %+v", g)
		}
	}
}

// checkChainSolution verifies a solved shoulder angle geometrically: the
// elbow placed at link1 along the angle must sit exactly link2 away from
// the pivot-local target.
func checkChainSolution(t *testing.T, g Geometry, xl, yl, angleDeg float64) {
	t.Helper()
	elbowX := g.Link1 * math.Cos(radians(angleDeg))
	elbowY := g.Link1 * math.Sin(radians(angleDeg))
	gap := math.Hypot(xl-elbowX, yl-elbowY)
	if absf(gap-g.Link2) > 1e-6 {
		t.Errorf("Angle %.4f° places elbow %.6f from target, want link2 %.6f",
			angleDeg, gap, g.Link2)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
