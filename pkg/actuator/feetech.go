package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/fivebarlabs/go-fivebar/pkg/servo"
)

// Feetech defaults for the STS3215 bus.
const (
	DefaultFeetechBaud    = 1000000
	DefaultFeetechTimeout = time.Second
	DefaultFeetechModel   = "sts3215"
)

// FeetechConfig configures the serial bus-servo backend.
type FeetechConfig struct {
	// Port is the serial device of the servo bus.
	Port string

	// Baudrate of the bus; defaults to 1 Mbit/s.
	Baudrate int

	// Timeout for bus transactions; defaults to one second.
	Timeout time.Duration

	// Model name for both servos; defaults to the STS3215.
	Model string

	// Calibrations maps each joint to its motor calibration. Missing
	// entries fall back to the full-range degree calibration.
	Calibrations map[servo.JointID]*feetech.MotorCalibration
}

// Feetech drives the two shoulder joints as servos on a feetech serial
// bus. Command values are interpreted in the bus normalization frame
// (degrees centered on the servo midpoint), so pair it with
// servo.CenteredMapping.
type Feetech struct {
	bus    *feetech.Bus
	servos map[servo.JointID]*feetech.Servo
	cals   map[servo.JointID]*feetech.MotorCalibration
}

// NewFeetech opens the bus and prepares both joint servos.
func NewFeetech(cfg FeetechConfig) (*Feetech, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("actuator: feetech port is required")
	}
	if cfg.Baudrate == 0 {
		cfg.Baudrate = DefaultFeetechBaud
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultFeetechTimeout
	}
	if cfg.Model == "" {
		cfg.Model = DefaultFeetechModel
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		Baudrate: cfg.Baudrate,
		Protocol: feetech.ProtocolV0,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("actuator: open feetech bus: %w", err)
	}

	f := &Feetech{
		bus:    bus,
		servos: make(map[servo.JointID]*feetech.Servo),
		cals:   make(map[servo.JointID]*feetech.MotorCalibration),
	}
	for _, joint := range []servo.JointID{servo.JointA, servo.JointB} {
		s, err := bus.ServoWithModel(int(joint), cfg.Model)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("actuator: create servo %s: %w", joint, err)
		}
		f.servos[joint] = s

		cal := cfg.Calibrations[joint]
		if cal == nil {
			cal = feetech.NewMotorCalibration(int(joint))
		}
		f.cals[joint] = cal
	}

	return f, nil
}

// SetPosition denormalizes the command through the joint calibration and
// writes the raw count to the servo.
func (f *Feetech) SetPosition(ctx context.Context, joint servo.JointID, value int) error {
	s, ok := f.servos[joint]
	if !ok {
		return fmt.Errorf("actuator: unknown joint %s", joint)
	}

	raw, err := f.cals[joint].Denormalize(float64(value))
	if err != nil {
		return fmt.Errorf("actuator: denormalize joint %s: %w", joint, err)
	}
	if err := s.SetPosition(ctx, raw); err != nil {
		return fmt.Errorf("actuator: set joint %s position: %w", joint, err)
	}
	return nil
}

// Close releases the servo bus.
func (f *Feetech) Close() error {
	return f.bus.Close()
}
