package motion

import (
	"time"

	"github.com/google/uuid"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

// Step records the outcome of one runner iteration. A run never aborts
// on a step failure; the step carries its own error instead.
type Step struct {
	// RunID identifies the run this step belongs to.
	RunID string

	// Index is the iteration number within the run, starting at zero.
	Index int

	// At is the elapsed offset from run start.
	At time.Duration

	// Target is the point the iteration tried to reach.
	Target kinematics.Point

	// Angles and Command are set when the solve succeeded, even if the
	// dispatch then failed.
	Angles  kinematics.Angles
	Command servo.Pair

	// Err is the solve or dispatch failure for this step, nil on success.
	Err error
}

// Skipped reports whether the step failed to complete, either because
// the solve rejected the target or the dispatch errored.
func (s Step) Skipped() bool {
	return s.Err != nil
}

// Report is the audit record of a full run.
type Report struct {
	// ID uniquely identifies the run.
	ID string

	// Path is the name of the path or sequence that was run.
	Path string

	// Steps holds every iteration in order, skipped ones included.
	Steps []Step

	// Dispatched and Skipped count the step outcomes.
	Dispatched int
	Skipped    int

	// Elapsed is the total run time.
	Elapsed time.Duration
}

func newReport(name string) *Report {
	return &Report{
		ID:   uuid.New().String(),
		Path: name,
	}
}

func (r *Report) add(s Step) {
	r.Steps = append(r.Steps, s)
	if s.Err != nil {
		r.Skipped++
	} else {
		r.Dispatched++
	}
}
