package armlink

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial/enumerator"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/path"
)

// StreamOptions configure timeline streaming.
type StreamOptions struct {
	// StartDelay shifts the whole schedule into the future, giving the
	// arm time to settle before the first sample.
	StartDelay time.Duration

	// WaitAck makes the stream block on the firmware acknowledgement
	// after every sample instead of free-running on the clock.
	WaitAck bool
}

// SendTrajectory sends waypoints one at a time, awaiting the firmware
// acknowledgement for each and pausing between them. Acknowledgement
// failures are logged and the trajectory continues; only cancellation
// or a write failure stops it.
func (l *Link) SendTrajectory(ctx context.Context, points []kinematics.Point, delay time.Duration) error {
	l.logger.Info("trajectory start", "points", len(points), "delay", delay)
	for i, p := range points {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.SendTarget(p); err != nil {
			return err
		}
		if _, err := l.AwaitAck(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			l.logger.Warn("ack failed", "index", i, "x", p.X, "y", p.Y, "error", err)
		}
		if i < len(points)-1 && delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}
	}
	l.logger.Info("trajectory complete", "points", len(points))
	return nil
}

// StreamTimeline replays a sampled timeline against the wall clock:
// each sample is written at its absolute scheduled instant, so a slow
// acknowledgement never skews the samples after it. Late samples go
// out immediately.
func (l *Link) StreamTimeline(ctx context.Context, tl path.Timeline, opts StreamOptions) error {
	if len(tl) == 0 {
		return nil
	}

	start := time.Now().Add(opts.StartDelay)
	l.logger.Info("stream start", "samples", len(tl), "start_delay", opts.StartDelay, "wait_ack", opts.WaitAck)

	for i, s := range tl {
		if wait := time.Until(start.Add(s.T)); wait > 0 {
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := l.SendTarget(s.P); err != nil {
			return fmt.Errorf("armlink: stream sample %d: %w", i, err)
		}
		if opts.WaitAck {
			if _, err := l.AwaitAck(ctx); err != nil {
				if ctx.Err() != nil {
					return err
				}
				l.logger.Warn("ack failed", "index", i, "error", err)
			}
		} else {
			// Give the firmware a beat to take the line off the wire.
			time.Sleep(time.Millisecond)
		}
	}

	l.logger.Info("stream complete", "samples", len(tl), "elapsed", time.Since(start))
	return nil
}

// Ports lists serial device names visible on this machine.
func Ports() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("armlink: enumerate ports: %w", err)
	}
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.Name)
	}
	return names, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
