package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/actuator"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

func newTestServer(t *testing.T) (*Server, *actuator.Mock) {
	t.Helper()
	mock := actuator.NewMock()
	cfg := motion.DefaultConfig()
	cfg.Actuator = mock
	arm, err := motion.New(cfg)
	if err != nil {
		t.Fatalf("motion.New failed: %v", err)
	}
	return NewServer(arm, "0"), mock
}

func postJSON(t *testing.T, s *Server, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

// waitIdle polls until the run slot is free.
func waitIdle(t *testing.T, s *Server) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !s.runActive() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run did not finish in time")
}

func TestHandleMove(t *testing.T) {
	s, mock := newTestServer(t)

	if code := postJSON(t, s, "/api/move", `{"x":120,"y":105}`); code != 200 {
		t.Fatalf("Expected 200, got %d", code)
	}

	pos := mock.Positions()
	if pos[servo.JointA] != 16 || pos[servo.JointB] != 64 {
		t.Errorf("Expected commands 16/64, got %d/%d",
			pos[servo.JointA], pos[servo.JointB])
	}
}

func TestHandleMoveUnreachable(t *testing.T) {
	s, mock := newTestServer(t)

	if code := postJSON(t, s, "/api/move", `{"x":500,"y":500}`); code != 422 {
		t.Fatalf("Expected 422 for unreachable target, got %d", code)
	}
	if got := mock.CallCount("SetPosition"); got != 0 {
		t.Errorf("Expected no dispatch, got %d calls", got)
	}
}

func TestHandleMoveBadBody(t *testing.T) {
	s, _ := newTestServer(t)

	if code := postJSON(t, s, "/api/move", `{"x":`); code != 400 {
		t.Errorf("Expected 400 for malformed body, got %d", code)
	}
}

func TestHandleGeometry(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/geometry", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["link1"] != 92.2 || body["link2"] != 80.24 {
		t.Errorf("Expected default link lengths, got %+v", body)
	}
	if body["max_reach"] != body["link1"]+body["link2"] {
		t.Errorf("Expected max reach %v, got %v",
			body["link1"]+body["link2"], body["max_reach"])
	}
}

func TestHandleSequence(t *testing.T) {
	s, mock := newTestServer(t)

	code := postJSON(t, s, "/api/sequence",
		`{"points":[{"x":120,"y":105},{"x":130,"y":110}],"step_delay_ms":1}`)
	if code != 202 {
		t.Fatalf("Expected 202, got %d", code)
	}
	waitIdle(t, s)

	if got := mock.CallCount("SetPosition"); got != 4 {
		t.Errorf("Expected 4 dispatches for 2 waypoints, got %d", got)
	}

	s.stateMu.RLock()
	st := s.state
	s.stateMu.RUnlock()
	if st.Running || st.Dispatched != 2 || st.Skipped != 0 {
		t.Errorf("Expected idle state with 2 dispatched, got %+v", st)
	}
}

func TestHandleSequenceEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	if code := postJSON(t, s, "/api/sequence", `{"points":[]}`); code != 400 {
		t.Errorf("Expected 400 for empty points, got %d", code)
	}
}

func TestHandleRectangleValidation(t *testing.T) {
	s, _ := newTestServer(t)

	if code := postJSON(t, s, "/api/rectangle", `{"total_ms":0}`); code != 400 {
		t.Errorf("Expected 400 for missing duration, got %d", code)
	}
	if code := postJSON(t, s, "/api/rectangle",
		`{"total_ms":1000,"corners":[{"x":1,"y":1}]}`); code != 400 {
		t.Errorf("Expected 400 for partial corners, got %d", code)
	}
}

func TestHandleRectangleRejectsConcurrentRun(t *testing.T) {
	s, _ := newTestServer(t)

	if code := postJSON(t, s, "/api/rectangle", `{"total_ms":5000}`); code != 202 {
		t.Fatalf("Expected 202, got %d", code)
	}

	// The slot is claimed synchronously before the handler returns.
	if code := postJSON(t, s, "/api/rectangle", `{"total_ms":1000}`); code != 409 {
		t.Errorf("Expected 409 while a run is active, got %d", code)
	}
	if code := postJSON(t, s, "/api/move", `{"x":120,"y":105}`); code != 409 {
		t.Errorf("Expected 409 for move during a run, got %d", code)
	}

	if code := postJSON(t, s, "/api/stop", `{}`); code != 200 {
		t.Errorf("Expected 200 from stop, got %d", code)
	}
	waitIdle(t, s)

	// Stopping again reports idle.
	if stopped := s.stopRun(); stopped {
		t.Error("Expected no active run after stop")
	}
}

func TestHandleRectangleCompletes(t *testing.T) {
	s, mock := newTestServer(t)

	code := postJSON(t, s, "/api/rectangle", `{"total_ms":100,"interval_ms":10}`)
	if code != 202 {
		t.Fatalf("Expected 202, got %d", code)
	}
	waitIdle(t, s)

	// 10 ticks, two joints each, all corners reachable.
	if got := mock.CallCount("SetPosition"); got != 20 {
		t.Errorf("Expected 20 dispatches, got %d", got)
	}

	s.stateMu.RLock()
	st := s.state
	s.stateMu.RUnlock()
	if st.RunID == "" || st.Dispatched != 10 {
		t.Errorf("Expected final snapshot with run ID and 10 dispatched, got %+v", st)
	}
}

func TestHandleFrameWithoutCamera(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/frame", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 503 {
		t.Errorf("Expected 503 without a camera, got %d", resp.StatusCode)
	}
}
