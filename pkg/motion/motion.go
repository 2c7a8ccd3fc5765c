// Package motion drives the arm. An Arm binds geometry, joint mappings,
// an actuator, and a clock once at startup, then runs single-target
// moves, fixed waypoint sequences, and timed path loops. Solving and
// dispatch happen synchronously on the caller's goroutine; the only
// waits are the explicit timed ones between samples.
package motion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fivebarlabs/go-fivebar/pkg/actuator"
	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

// Config holds everything an Arm needs. Geometry and mappings are fixed
// for the lifetime of the Arm.
type Config struct {
	// Geometry of the two chains.
	Geometry kinematics.Geometry

	// Primary and Secondary map the solved chain angles onto the two
	// servo channels.
	Primary   servo.Mapping
	Secondary servo.Mapping

	// Actuator receives the mapped commands.
	Actuator actuator.Actuator

	// Clock is the time source; defaults to the system clock.
	Clock Clock

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns a config for the reference arm with default
// mappings. The caller must still supply an Actuator.
func DefaultConfig() Config {
	return Config{
		Geometry:  kinematics.DefaultGeometry(),
		Primary:   servo.DefaultMapping(),
		Secondary: servo.DefaultMapping(),
	}
}

// Validate checks the config for construction-time errors.
func (c Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if err := c.Primary.Validate(); err != nil {
		return fmt.Errorf("motion: primary mapping: %w", err)
	}
	if err := c.Secondary.Validate(); err != nil {
		return fmt.Errorf("motion: secondary mapping: %w", err)
	}
	if c.Actuator == nil {
		return fmt.Errorf("motion: actuator is required")
	}
	return nil
}

// Arm executes motion requests against a fixed arm configuration.
// It is read-only after construction.
type Arm struct {
	geom      kinematics.Geometry
	primary   servo.Mapping
	secondary servo.Mapping
	act       actuator.Actuator
	clock     Clock
	logger    *slog.Logger
}

// New validates the config and builds an Arm.
func New(cfg Config) (*Arm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Arm{
		geom:      cfg.Geometry,
		primary:   cfg.Primary,
		secondary: cfg.Secondary,
		act:       cfg.Actuator,
		clock:     clock,
		logger:    logger.With("component", "motion"),
	}, nil
}

// Geometry returns the arm's chain geometry.
func (a *Arm) Geometry() kinematics.Geometry {
	return a.geom
}

// MoveTo solves the target and dispatches exactly one command pair. An
// unreachable target returns the solve error with nothing dispatched;
// the actuator keeps its last commanded position.
func (a *Arm) MoveTo(ctx context.Context, target kinematics.Point) error {
	angles, err := a.geom.Solve(target)
	if err != nil {
		return err
	}
	pair := servo.MapAngles(angles, a.primary, a.secondary)
	a.logger.Debug("move", "target", target, "angles", angles, "command", pair)
	return a.dispatch(ctx, pair)
}

// dispatch writes the pair to the actuator, joint A then joint B.
func (a *Arm) dispatch(ctx context.Context, pair servo.Pair) error {
	if err := a.act.SetPosition(ctx, servo.JointA, pair.A); err != nil {
		return fmt.Errorf("motion: set joint A: %w", err)
	}
	if err := a.act.SetPosition(ctx, servo.JointB, pair.B); err != nil {
		return fmt.Errorf("motion: set joint B: %w", err)
	}
	return nil
}
