package vision

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// CSVLogger appends tracking rows to a CSV stream, one per detection,
// with a monotonically increasing frame counter.
type CSVLogger struct {
	w     *csv.Writer
	frame int
}

// NewCSVLogger writes the header and returns a logger over w.
func NewCSVLogger(w io.Writer) (*CSVLogger, error) {
	cw := csv.NewWriter(w)
	header := []string{"Frame", "X (px)", "Y (px)", "X", "Y", "Area"}
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("vision: write csv header: %w", err)
	}
	return &CSVLogger{w: cw}, nil
}

// Log records one detection together with its workspace position.
func (l *CSVLogger) Log(d Detection, world kinematics.Point) error {
	l.frame++
	row := []string{
		strconv.Itoa(l.frame),
		fmt.Sprintf("%.0f", d.Pixel.X),
		fmt.Sprintf("%.0f", d.Pixel.Y),
		fmt.Sprintf("%.4f", world.X),
		fmt.Sprintf("%.4f", world.Y),
		fmt.Sprintf("%.0f", d.Area),
	}
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("vision: write csv row: %w", err)
	}
	return nil
}

// Flush pushes buffered rows to the underlying writer.
func (l *CSVLogger) Flush() error {
	l.w.Flush()
	return l.w.Error()
}
