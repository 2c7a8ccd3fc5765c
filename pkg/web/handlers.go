package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/path"
	"github.com/fivebarlabs/go-fivebar/pkg/telemetry"
)

// PointDTO is a point in a request or response body.
type PointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveRequest is the body for POST /api/move.
type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SequenceRequest is the body for POST /api/sequence.
type SequenceRequest struct {
	Points      []PointDTO `json:"points"`
	StepDelayMs float64    `json:"step_delay_ms"`
}

// RectangleRequest is the body for POST /api/rectangle. Corners, when
// present, are bottom-right, top-right, top-left, bottom-left; omitted
// corners select the default characterization square.
type RectangleRequest struct {
	Corners    []PointDTO `json:"corners"`
	TotalMs    float64    `json:"total_ms"`
	IntervalMs float64    `json:"interval_ms"`
}

// handleStatus returns the current dashboard snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleGeometry returns the arm geometry and its reach annulus.
func (s *Server) handleGeometry(c *fiber.Ctx) error {
	g := s.arm.Geometry()
	return c.JSON(fiber.Map{
		"link1":        g.Link1,
		"link2":        g.Link2,
		"pivot_offset": g.PivotOffset,
		"max_reach":    g.MaxReach(),
		"min_reach":    g.MinReach(),
	})
}

// handleMove executes a single synchronous move.
func (s *Server) handleMove(c *fiber.Ctx) error {
	if s.runActive() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a run is active",
		})
	}

	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body",
		})
	}

	target := kinematics.Point{X: req.X, Y: req.Y}
	if err := s.arm.MoveTo(c.UserContext(), target); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, kinematics.ErrUnreachable) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.UpdateState(func(st *ArmState) {
		st.LastX = target.X
		st.LastY = target.Y
	})
	return c.JSON(fiber.Map{
		"status": "ok",
		"x":      target.X,
		"y":      target.Y,
	})
}

// handleSequence starts a waypoint sequence run.
func (s *Server) handleSequence(c *fiber.Ctx) error {
	var req SequenceRequest
	if err := c.BodyParser(&req); err != nil || len(req.Points) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "at least one waypoint is required",
		})
	}

	ctx, ok := s.beginRun()
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a run is active",
		})
	}

	waypoints := make([]kinematics.Point, len(req.Points))
	for i, p := range req.Points {
		waypoints[i] = kinematics.Point{X: p.X, Y: p.Y}
	}
	opts := motion.SequenceOptions{
		StepDelay: time.Duration(req.StepDelayMs * float64(time.Millisecond)),
		OnStep:    s.publishStep,
	}

	go func() {
		defer s.endRun()
		s.markRunStarted("waypoints")
		steps, err := s.arm.RunSequence(ctx, waypoints, opts)
		s.markRunFinished(sequenceReport(steps), err)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":    "started",
		"path":      "waypoints",
		"waypoints": len(waypoints),
	})
}

// handleRectangle starts a rectangle path run.
func (s *Server) handleRectangle(c *fiber.Ctx) error {
	var req RectangleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body",
		})
	}
	if req.TotalMs <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "total_ms must be positive",
		})
	}
	total := time.Duration(req.TotalMs * float64(time.Millisecond))

	var rect *path.Rectangle
	switch len(req.Corners) {
	case 0:
		rect = path.DefaultSquare(total)
	case 4:
		var err error
		rect, err = path.NewRectangle(
			kinematics.Point{X: req.Corners[0].X, Y: req.Corners[0].Y},
			kinematics.Point{X: req.Corners[1].X, Y: req.Corners[1].Y},
			kinematics.Point{X: req.Corners[2].X, Y: req.Corners[2].Y},
			kinematics.Point{X: req.Corners[3].X, Y: req.Corners[3].Y},
			total,
		)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "corners must be empty or exactly four points",
		})
	}

	ctx, ok := s.beginRun()
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a run is active",
		})
	}

	opts := motion.PathOptions{
		SampleInterval: time.Duration(req.IntervalMs * float64(time.Millisecond)),
		OnStep:         s.publishStep,
	}

	go func() {
		defer s.endRun()
		s.markRunStarted(rect.Name())
		rep, err := s.arm.RunPath(ctx, rect, opts)
		s.markRunFinished(rep, err)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":      "started",
		"path":        rect.Name(),
		"duration_ms": req.TotalMs,
	})
}

// handleStop aborts the active run.
func (s *Server) handleStop(c *fiber.Ctx) error {
	if s.stopRun() {
		return c.JSON(fiber.Map{"status": "stopping"})
	}
	return c.JSON(fiber.Map{"status": "idle"})
}

// handleFrame returns one camera snapshot.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	if s.OnCaptureFrame == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no camera attached",
		})
	}
	frame, err := s.OnCaptureFrame()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(frame)
}

// publishStep forwards a runner step to the dashboard feeds.
func (s *Server) publishStep(step motion.Step) bool {
	s.stepFeed.PublishStep(step)
	s.UpdateState(func(st *ArmState) {
		st.RunID = step.RunID
		if step.Err == nil {
			st.Dispatched++
			st.LastX = step.Target.X
			st.LastY = step.Target.Y
		} else {
			st.Skipped++
		}
	})
	return true
}

// markRunStarted resets the snapshot for a new run.
func (s *Server) markRunStarted(name string) {
	s.UpdateState(func(st *ArmState) {
		st.Running = true
		st.Path = name
		st.RunID = ""
		st.Dispatched = 0
		st.Skipped = 0
	})
}

// markRunFinished publishes the lifecycle event and final snapshot.
func (s *Server) markRunFinished(rep *motion.Report, err error) {
	state := telemetry.RunCompleted
	switch {
	case errors.Is(err, motion.ErrAborted), errors.Is(err, context.Canceled):
		state = telemetry.RunAborted
	case err != nil:
		state = telemetry.RunFailed
	}
	s.stepFeed.PublishRun(state, rep)
	s.logger.Info("run finished", "run_id", rep.ID, "path", rep.Path,
		"state", state, "dispatched", rep.Dispatched, "skipped", rep.Skipped)

	s.UpdateState(func(st *ArmState) {
		st.Running = false
		st.RunID = rep.ID
		st.Dispatched = rep.Dispatched
		st.Skipped = rep.Skipped
	})
}

// sequenceReport folds sequence steps into a report shape so sequences
// and path runs share one lifecycle event.
func sequenceReport(steps []motion.Step) *motion.Report {
	rep := &motion.Report{Path: "waypoints", Steps: steps}
	for _, s := range steps {
		rep.ID = s.RunID
		if s.Err != nil {
			rep.Skipped++
		} else {
			rep.Dispatched++
		}
		if s.At > rep.Elapsed {
			rep.Elapsed = s.At
		}
	}
	return rep
}

// handleStatusWS streams state snapshots, seeding each client with the
// current one.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.stateMu.RLock()
	state := s.state
	s.stateMu.RUnlock()
	c.WriteJSON(state)

	telemetry.NewClient(s.statusFeed, c).Run()
}

// handleStepsWS streams per-sample step events.
func (s *Server) handleStepsWS(c *websocket.Conn) {
	telemetry.NewClient(s.stepFeed, c).Run()
}

// handleCameraWS streams JPEG frames.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	telemetry.NewClient(s.cameraFeed, c).Run()
}
