package path

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// closedEps is the tolerance used to decide whether a timeline's first
// and last points coincide.
const closedEps = 1e-4

// Sample is one timestamped point on a path.
type Sample struct {
	T time.Duration
	P kinematics.Point
}

// Timeline is a pre-sampled path, ordered by time.
type Timeline []Sample

// SamplePath samples p every interval from t=0 up to (not including)
// the path duration, the same half-open cadence the live runner uses.
func SamplePath(p Path, interval time.Duration) Timeline {
	if interval <= 0 || p.Duration() <= 0 {
		return nil
	}
	var tl Timeline
	for t := time.Duration(0); t < p.Duration(); t += interval {
		tl = append(tl, Sample{T: t, P: p.Evaluate(t)})
	}
	return tl
}

// SaveCSV writes the timeline with header t_ms,x,y. Times are written
// in milliseconds with microsecond precision, coordinates with six
// decimal places.
func SaveCSV(w io.Writer, tl Timeline) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t_ms", "x", "y"}); err != nil {
		return fmt.Errorf("path: write csv header: %w", err)
	}
	for _, s := range tl {
		ms := float64(s.T) / float64(time.Millisecond)
		rec := []string{
			fmt.Sprintf("%.3f", ms),
			fmt.Sprintf("%.6f", s.P.X),
			fmt.Sprintf("%.6f", s.P.Y),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("path: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadCSV reads a t_ms,x,y timeline. The header row and any malformed
// rows are skipped; an error is returned only when no valid samples
// remain.
func LoadCSV(r io.Reader) (Timeline, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var tl Timeline
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("path: read csv: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(rec) < 3 {
			continue
		}
		ms, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		x, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			continue
		}
		tl = append(tl, Sample{
			T: time.Duration(ms * float64(time.Millisecond)),
			P: kinematics.Point{X: x, Y: y},
		})
	}
	if len(tl) == 0 {
		return nil, fmt.Errorf("path: no samples found")
	}
	return tl, nil
}

// SaveFile writes the timeline to a CSV file.
func SaveFile(name string, tl Timeline) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("path: create %s: %w", name, err)
	}
	defer f.Close()
	return SaveCSV(f, tl)
}

// LoadFile reads a timeline from a CSV file.
func LoadFile(name string) (Timeline, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("path: open %s: %w", name, err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// Preview summarizes a timeline for display before a run.
type Preview struct {
	Samples  int
	Duration time.Duration
	MinX     float64
	MaxX     float64
	MinY     float64
	MaxY     float64
	Closed   bool
}

// Summarize computes the preview for a timeline. Closed means the first
// and last points coincide within a small tolerance.
func Summarize(tl Timeline) Preview {
	if len(tl) == 0 {
		return Preview{}
	}
	p := Preview{
		Samples:  len(tl),
		Duration: tl[len(tl)-1].T,
		MinX:     tl[0].P.X,
		MaxX:     tl[0].P.X,
		MinY:     tl[0].P.Y,
		MaxY:     tl[0].P.Y,
	}
	for _, s := range tl[1:] {
		if s.P.X < p.MinX {
			p.MinX = s.P.X
		}
		if s.P.X > p.MaxX {
			p.MaxX = s.P.X
		}
		if s.P.Y < p.MinY {
			p.MinY = s.P.Y
		}
		if s.P.Y > p.MaxY {
			p.MaxY = s.P.Y
		}
	}
	first := tl[0].P
	last := tl[len(tl)-1].P
	p.Closed = first.ApproxEqual(last, closedEps)
	return p
}
