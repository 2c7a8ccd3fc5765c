package telemetry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

func TestNewStepEvent(t *testing.T) {
	s := motion.Step{
		RunID:   "run-1",
		Index:   7,
		At:      70 * time.Millisecond,
		Target:  kinematics.Point{X: 120, Y: 105},
		Angles:  kinematics.Angles{A: 15.74, B: 64.41},
		Command: servo.Pair{A: 16, B: 64},
	}

	ev := NewStepEvent(s)
	if ev.Type != "step" || ev.RunID != "run-1" {
		t.Errorf("Expected step event for run-1, got %+v", ev)
	}
	if ev.AtMs != 70 {
		t.Errorf("Expected 70ms offset, got %v", ev.AtMs)
	}
	if ev.CmdA != 16 || ev.CmdB != 64 {
		t.Errorf("Expected commands 16/64, got %d/%d", ev.CmdA, ev.CmdB)
	}
	if ev.Skipped || ev.Error != "" {
		t.Errorf("Expected clean step, got skipped=%v error=%q", ev.Skipped, ev.Error)
	}
}

func TestNewStepEventSkipped(t *testing.T) {
	s := motion.Step{
		RunID:  "run-1",
		Index:  3,
		Target: kinematics.Point{X: 500, Y: 500},
		Err:    errors.New("kinematics: target unreachable"),
	}

	ev := NewStepEvent(s)
	if !ev.Skipped {
		t.Error("Expected skipped flag set")
	}
	if ev.Error == "" {
		t.Error("Expected error text carried")
	}

	// The error field only appears on the wire when set.
	data, err := json.Marshal(NewStepEvent(motion.Step{}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "\"error\"") {
		t.Errorf("Expected error omitted for clean step, got %s", data)
	}
}

func TestNewRunEvent(t *testing.T) {
	rep := &motion.Report{
		ID:         "run-9",
		Path:       "rectangle",
		Dispatched: 498,
		Skipped:    2,
		Elapsed:    5 * time.Second,
	}

	ev := NewRunEvent(RunCompleted, rep)
	if ev.Type != "run" || ev.State != RunCompleted {
		t.Errorf("Expected completed run event, got %+v", ev)
	}
	if ev.ElapsedMs != 5000 {
		t.Errorf("Expected 5000ms elapsed, got %v", ev.ElapsedMs)
	}
	if ev.Dispatched != 498 || ev.Skipped != 2 {
		t.Errorf("Expected counts 498/2, got %d/%d", ev.Dispatched, ev.Skipped)
	}
}

func TestFeedBroadcastNeverBlocks(t *testing.T) {
	f := NewFeed("status")

	// No Run loop consuming: the queue fills, then drops, and Broadcast
	// must return every time.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			f.Broadcast(NewJSONMessage([]byte(`{}`)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}

	if f.ClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", f.ClientCount())
	}
}
