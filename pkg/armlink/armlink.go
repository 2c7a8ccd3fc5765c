// Package armlink speaks the arm firmware's serial line protocol.
// Targets go out as "x,y\n"; the firmware answers with progress lines,
// ending in a "Position reached!" acknowledgement or an "ERROR" line.
// The firmware resets when the port opens, so Open waits out the reset
// and drains the boot banner before returning.
package armlink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
)

// Firmware acknowledgement markers.
const (
	ackReached = "Position reached!"
	ackError   = "ERROR"
)

var (
	// ErrAckTimeout means no acknowledgement arrived in time.
	ErrAckTimeout = errors.New("armlink: ack timeout")

	// ErrNackReceived means the firmware reported an error line
	// instead of the reached acknowledgement.
	ErrNackReceived = errors.New("armlink: firmware rejected target")
)

// Port is the transport under a Link. The real implementation is a
// go.bug.st serial port; tests use an in-memory fake. Reads follow the
// serial timeout contract: (0, nil) when no data arrived in time.
type Port interface {
	io.ReadWriter
	io.Closer
}

// Config holds the link settings.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyACM0 or COM12.
	Port string

	// Baud defaults to 9600, the firmware's rate.
	Baud int

	// ResetWait is how long to wait for the firmware reset after the
	// port opens; defaults to 2s.
	ResetWait time.Duration

	// AckTimeout bounds AwaitAck; defaults to 2s.
	AckTimeout time.Duration

	// PollInterval paces acknowledgement polling; defaults to 50ms.
	PollInterval time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Baud == 0 {
		c.Baud = 9600
	}
	if c.ResetWait == 0 {
		c.ResetWait = 2 * time.Second
	}
	if c.AckTimeout == 0 {
		c.AckTimeout = 2 * time.Second
	}
	if c.PollInterval == 0 {
		c.PollInterval = 50 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Link is a connection to the arm firmware. It is not safe for
// concurrent use; the firmware itself is a single serial peer.
type Link struct {
	port   Port
	cfg    Config
	logger *slog.Logger
	buf    []byte
}

// Open connects to the firmware on a real serial port, waits out the
// reset, and drains the boot banner.
func Open(cfg Config) (*Link, error) {
	cfg = cfg.withDefaults()
	if cfg.Port == "" {
		return nil, fmt.Errorf("armlink: port is required")
	}

	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("armlink: open %s: %w", cfg.Port, err)
	}
	port.SetReadTimeout(cfg.PollInterval)

	l := NewLink(port, cfg)
	l.logger.Info("connected", "port", cfg.Port, "baud", cfg.Baud)

	// The firmware reboots when the host opens the port.
	time.Sleep(cfg.ResetWait)
	l.Drain()
	return l, nil
}

// NewLink wraps an already-open transport. Config's Port and Baud are
// ignored; only the timing fields apply.
func NewLink(port Port, cfg Config) *Link {
	cfg = cfg.withDefaults()
	return &Link{
		port:   port,
		cfg:    cfg,
		logger: cfg.Logger.With("component", "armlink"),
	}
}

// SendTarget writes one target as "x,y\n".
func (l *Link) SendTarget(p kinematics.Point) error {
	if _, err := fmt.Fprintf(l.port, "%g,%g\n", p.X, p.Y); err != nil {
		return fmt.Errorf("armlink: send target: %w", err)
	}
	return nil
}

// AwaitAck polls firmware lines until the reached acknowledgement, an
// error line, cancellation, or the ack timeout. The matched line is
// returned either way.
func (l *Link) AwaitAck(ctx context.Context) (string, error) {
	deadline := time.Now().Add(l.cfg.AckTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line, err := l.readLine()
		if err != nil {
			return "", fmt.Errorf("armlink: read ack: %w", err)
		}
		if line == "" {
			time.Sleep(l.cfg.PollInterval)
			continue
		}

		l.logger.Debug("firmware", "line", line)
		if strings.Contains(line, ackReached) {
			return line, nil
		}
		if strings.Contains(line, ackError) {
			return line, fmt.Errorf("%w: %s", ErrNackReceived, line)
		}
	}
	return "", ErrAckTimeout
}

// Drain reads and logs whatever the firmware has queued, stopping at
// the first empty poll.
func (l *Link) Drain() {
	for {
		line, err := l.readLine()
		if err != nil || line == "" {
			return
		}
		l.logger.Info("firmware", "line", line)
	}
}

// readLine returns the next complete line without its terminator, or
// "" when no full line is buffered yet.
func (l *Link) readLine() (string, error) {
	for {
		if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
			line := strings.TrimSpace(string(l.buf[:i]))
			l.buf = l.buf[i+1:]
			return line, nil
		}

		chunk := make([]byte, 256)
		n, err := l.port.Read(chunk)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", nil
		}
		l.buf = append(l.buf, chunk[:n]...)
	}
}

// Close releases the port.
func (l *Link) Close() error {
	return l.port.Close()
}
