package actuator

import (
	"context"
	"sync"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

// Mock implements Actuator for testing.
// Behavior can be customized via function fields.
type Mock struct {
	// SetPositionFunc is called when SetPosition is invoked.
	// If nil, the command is accepted silently.
	SetPositionFunc func(ctx context.Context, joint servo.JointID, value int) error

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Joint  servo.JointID
	Value  int
	Time   time.Time
}

// NewMock creates a mock actuator that accepts every command.
func NewMock() *Mock {
	return &Mock{}
}

// SetPosition calls SetPositionFunc and records the call.
func (m *Mock) SetPosition(ctx context.Context, joint servo.JointID, value int) error {
	m.recordCall("SetPosition", joint, value)
	if m.SetPositionFunc != nil {
		return m.SetPositionFunc(ctx, joint, value)
	}
	return nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", 0, 0)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method string, joint servo.JointID, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Joint:  joint,
		Value:  value,
		Time:   time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// Positions returns the last commanded value per joint.
func (m *Mock) Positions() map[servo.JointID]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[servo.JointID]int)
	for _, c := range m.calls {
		if c.Method == "SetPosition" {
			result[c.Joint] = c.Value
		}
	}
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// LastCall returns the most recent call, or nil if none.
func (m *Mock) LastCall() *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// WithError makes every SetPosition fail with err. Returns m for
// chaining.
func (m *Mock) WithError(err error) *Mock {
	m.SetPositionFunc = func(ctx context.Context, joint servo.JointID, value int) error {
		return err
	}
	return m
}

// WithLatency adds artificial dispatch latency ahead of the existing
// SetPositionFunc. Returns m for chaining.
func (m *Mock) WithLatency(delay time.Duration) *Mock {
	original := m.SetPositionFunc
	m.SetPositionFunc = func(ctx context.Context, joint servo.JointID, value int) error {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if original != nil {
			return original(ctx, joint, value)
		}
		return nil
	}
	return m
}
