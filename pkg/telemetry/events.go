package telemetry

import (
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/motion"
)

// Run lifecycle states carried by RunEvent.
const (
	RunStarted   = "started"
	RunCompleted = "completed"
	RunAborted   = "aborted"
	RunFailed    = "failed"
)

// StepEvent mirrors one runner iteration onto the wire.
type StepEvent struct {
	Type    string  `json:"type"`
	RunID   string  `json:"run_id"`
	Index   int     `json:"index"`
	AtMs    float64 `json:"at_ms"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	AngleA  float64 `json:"angle_a"`
	AngleB  float64 `json:"angle_b"`
	CmdA    int     `json:"cmd_a"`
	CmdB    int     `json:"cmd_b"`
	Skipped bool    `json:"skipped"`
	Error   string  `json:"error,omitempty"`
}

// NewStepEvent converts a motion step for broadcast.
func NewStepEvent(s motion.Step) StepEvent {
	ev := StepEvent{
		Type:    "step",
		RunID:   s.RunID,
		Index:   s.Index,
		AtMs:    float64(s.At) / float64(time.Millisecond),
		X:       s.Target.X,
		Y:       s.Target.Y,
		AngleA:  s.Angles.A,
		AngleB:  s.Angles.B,
		CmdA:    s.Command.A,
		CmdB:    s.Command.B,
		Skipped: s.Skipped(),
	}
	if s.Err != nil {
		ev.Error = s.Err.Error()
	}
	return ev
}

// RunEvent marks a run lifecycle transition.
type RunEvent struct {
	Type       string  `json:"type"`
	RunID      string  `json:"run_id"`
	Path       string  `json:"path"`
	State      string  `json:"state"`
	Dispatched int     `json:"dispatched"`
	Skipped    int     `json:"skipped"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// NewRunEvent builds a lifecycle event from a report.
func NewRunEvent(state string, rep *motion.Report) RunEvent {
	return RunEvent{
		Type:       "run",
		RunID:      rep.ID,
		Path:       rep.Path,
		State:      state,
		Dispatched: rep.Dispatched,
		Skipped:    rep.Skipped,
		ElapsedMs:  float64(rep.Elapsed) / float64(time.Millisecond),
	}
}
