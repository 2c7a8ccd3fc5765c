package motion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/path"
	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

// ErrAborted is returned when an OnStep callback stops a run early.
var ErrAborted = errors.New("motion: run aborted")

// Runner defaults.
const (
	DefaultStepDelay      = time.Second
	DefaultSampleInterval = 10 * time.Millisecond
)

// SequenceOptions configure RunSequence.
type SequenceOptions struct {
	// StepDelay is the fixed wait after each dispatched waypoint;
	// defaults to one second.
	StepDelay time.Duration

	// OnStep receives every step result when set. Returning false
	// aborts the run at the iteration boundary.
	OnStep func(Step) bool
}

// PathOptions configure RunPath.
type PathOptions struct {
	// SampleInterval is the fixed tick; defaults to 10ms.
	SampleInterval time.Duration

	// OnStep receives every step result when set. Returning false
	// aborts the run at the iteration boundary.
	OnStep func(Step) bool
}

// TimelineOptions configure RunTimeline.
type TimelineOptions struct {
	// StartDelay shifts the whole schedule, giving hardware time to
	// settle before the first sample.
	StartDelay time.Duration

	// OnStep receives every step result when set. Returning false
	// aborts the run at the iteration boundary.
	OnStep func(Step) bool
}

// step runs one solve-map-dispatch iteration. An unreachable target or
// a dispatch failure lands on the step, never on the run.
func (a *Arm) step(ctx context.Context, runID string, index int, at time.Duration, target kinematics.Point) Step {
	s := Step{RunID: runID, Index: index, At: at, Target: target}

	angles, err := a.geom.Solve(target)
	if err != nil {
		s.Err = err
		a.logger.Debug("skipping unreachable target", "index", index, "target", target)
		return s
	}
	s.Angles = angles
	s.Command = servo.MapAngles(angles, a.primary, a.secondary)

	if err := a.dispatch(ctx, s.Command); err != nil {
		s.Err = err
		a.logger.Warn("dispatch failed", "index", index, "target", target, "error", err)
	}
	return s
}

// RunSequence visits the waypoints in order. An unreachable waypoint is
// skipped silently and the run continues; a reachable one is dispatched
// and then the fixed delay is observed before the next. The run is
// terminal: it does not loop and never surfaces a skip as an error.
func (a *Arm) RunSequence(ctx context.Context, waypoints []kinematics.Point, opts SequenceOptions) ([]Step, error) {
	delay := opts.StepDelay
	if delay <= 0 {
		delay = DefaultStepDelay
	}

	runID := uuid.New().String()
	steps := make([]Step, 0, len(waypoints))
	start := a.clock.Now()
	for i, wp := range waypoints {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		s := a.step(ctx, runID, i, a.clock.Now().Sub(start), wp)
		steps = append(steps, s)
		if opts.OnStep != nil && !opts.OnStep(s) {
			return steps, ErrAborted
		}

		if s.Err == nil && i < len(waypoints)-1 {
			if err := a.clock.Sleep(ctx, delay); err != nil {
				return steps, err
			}
		}
	}
	a.logger.Info("sequence complete", "waypoints", len(waypoints), "steps", len(steps))
	return steps, nil
}

// RunPath samples p at a fixed cadence from t=0 until the path duration
// elapses. Each tick evaluates the path at the current elapsed time,
// solves, and dispatches; an unreachable sample skips that tick only.
// The tick cadence is independent of solve outcomes.
func (a *Arm) RunPath(ctx context.Context, p path.Path, opts PathOptions) (*Report, error) {
	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	rep := newReport(p.Name())
	start := a.clock.Now()
	a.logger.Info("path run starting", "run_id", rep.ID, "path", p.Name(),
		"duration", p.Duration(), "interval", interval)

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			rep.Elapsed = a.clock.Now().Sub(start)
			return rep, err
		}

		elapsed := a.clock.Now().Sub(start)
		if elapsed >= p.Duration() {
			break
		}

		s := a.step(ctx, rep.ID, i, elapsed, p.Evaluate(elapsed))
		rep.add(s)
		if opts.OnStep != nil && !opts.OnStep(s) {
			rep.Elapsed = a.clock.Now().Sub(start)
			return rep, ErrAborted
		}

		if err := a.clock.Sleep(ctx, interval); err != nil {
			rep.Elapsed = a.clock.Now().Sub(start)
			return rep, err
		}
	}

	rep.Elapsed = a.clock.Now().Sub(start)
	a.logger.Info("path run complete", "run_id", rep.ID,
		"dispatched", rep.Dispatched, "skipped", rep.Skipped, "elapsed", rep.Elapsed)
	return rep, nil
}

// RunTimeline replays a pre-sampled timeline, scheduling every sample at
// its absolute offset from run start. Late samples dispatch immediately;
// skip-and-continue semantics match RunPath.
func (a *Arm) RunTimeline(ctx context.Context, tl path.Timeline, opts TimelineOptions) (*Report, error) {
	rep := newReport("timeline")
	if len(tl) == 0 {
		return rep, nil
	}

	start := a.clock.Now().Add(opts.StartDelay)
	a.logger.Info("timeline run starting", "run_id", rep.ID,
		"samples", len(tl), "start_delay", opts.StartDelay)

	for i, sample := range tl {
		if err := ctx.Err(); err != nil {
			rep.Elapsed = a.clock.Now().Sub(start)
			return rep, err
		}

		if wait := start.Add(sample.T).Sub(a.clock.Now()); wait > 0 {
			if err := a.clock.Sleep(ctx, wait); err != nil {
				rep.Elapsed = a.clock.Now().Sub(start)
				return rep, err
			}
		}

		s := a.step(ctx, rep.ID, i, sample.T, sample.P)
		rep.add(s)
		if opts.OnStep != nil && !opts.OnStep(s) {
			rep.Elapsed = a.clock.Now().Sub(start)
			return rep, ErrAborted
		}
	}

	rep.Elapsed = a.clock.Now().Sub(start)
	a.logger.Info("timeline run complete", "run_id", rep.ID,
		"dispatched", rep.Dispatched, "skipped", rep.Skipped, "elapsed", rep.Elapsed)
	return rep, nil
}
