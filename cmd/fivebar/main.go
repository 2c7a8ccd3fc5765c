// Fivebar - CLI control for the five-bar arm
//
// Runs the square demo path, a fixed waypoint sequence, or an
// interactive x,y prompt against a mock or feetech actuator.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fivebarlabs/go-fivebar/internal/config"
	"github.com/fivebarlabs/go-fivebar/internal/log"
	"github.com/fivebarlabs/go-fivebar/pkg/actuator"
	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/path"
)

type cliConfig struct {
	Mode      string
	Actuator  string
	Port      string
	TotalTime time.Duration
	Interval  time.Duration
	StepDelay time.Duration
	Debug     bool
}

func main() {
	cfg := parseFlags()

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println("🦾 Fivebar Arm Control")
	fmt.Println("======================")
	fmt.Printf("Mode: %s, Actuator: %s\n\n", cfg.Mode, cfg.Actuator)

	act, err := buildActuator(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer act.Close()

	armCfg := motion.DefaultConfig()
	armCfg.Actuator = act
	arm, err := motion.New(armCfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cfg.Mode {
	case "square":
		err = runSquare(ctx, arm, cfg)
	case "seq":
		err = runSequence(ctx, arm, cfg)
	case "repl":
		err = runREPL(ctx, arm)
	default:
		fmt.Printf("❌ Unknown mode %q (want square, seq, or repl)\n", cfg.Mode)
		os.Exit(1)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() cliConfig {
	mode := flag.String("mode", "square", "Run mode: square, seq, or repl")
	act := flag.String("actuator", "mock", "Actuator backend: mock or feetech")
	port := flag.String("port", "", "Serial port for the feetech bus (overrides ARM_PORT)")
	total := flag.Duration("time", 5*time.Second, "Total time for the square path")
	interval := flag.Duration("interval", motion.DefaultSampleInterval, "Path sampling interval")
	delay := flag.Duration("delay", motion.DefaultStepDelay, "Delay between sequence waypoints")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg := cliConfig{
		Mode:      *mode,
		Actuator:  *act,
		Port:      *port,
		TotalTime: *total,
		Interval:  *interval,
		StepDelay: *delay,
		Debug:     *debug,
	}
	if cfg.Port == "" {
		cfg.Port = config.SerialPort("")
	}
	return cfg
}

func buildActuator(cfg cliConfig) (actuator.Actuator, error) {
	switch cfg.Actuator {
	case "mock":
		return actuator.NewMock(), nil
	case "feetech":
		if cfg.Port == "" {
			return nil, fmt.Errorf("feetech actuator needs -port or ARM_PORT")
		}
		return actuator.NewFeetech(actuator.FeetechConfig{Port: cfg.Port})
	default:
		return nil, fmt.Errorf("unknown actuator %q (want mock or feetech)", cfg.Actuator)
	}
}

// runSquare traces the demo square once.
func runSquare(ctx context.Context, arm *motion.Arm, cfg cliConfig) error {
	if cfg.TotalTime <= 0 {
		return fmt.Errorf("square duration must be positive, got %v", cfg.TotalTime)
	}
	square := path.DefaultSquare(cfg.TotalTime)

	fmt.Printf("▶️  Tracing square over %v (%v per sample)\n", cfg.TotalTime, cfg.Interval)
	rep, err := arm.RunPath(ctx, square, motion.PathOptions{SampleInterval: cfg.Interval})
	if rep != nil {
		printReport(rep)
	}
	return err
}

// runSequence walks a fixed reachable demo sequence.
func runSequence(ctx context.Context, arm *motion.Arm, cfg cliConfig) error {
	waypoints := []kinematics.Point{
		{X: 120, Y: 105},
		{X: 137, Y: 100},
		{X: 111, Y: 126},
		{X: 120, Y: 105},
	}

	fmt.Printf("▶️  Running %d waypoints (%v between)\n", len(waypoints), cfg.StepDelay)
	steps, err := arm.RunSequence(ctx, waypoints, motion.SequenceOptions{
		StepDelay: cfg.StepDelay,
		OnStep: func(s motion.Step) bool {
			if s.Skipped() {
				fmt.Printf("⚠️  Skipped (%.1f, %.1f): %v\n", s.Target.X, s.Target.Y, s.Err)
			} else {
				fmt.Printf("✅ (%.1f, %.1f) → A %d B %d\n", s.Target.X, s.Target.Y, s.Command.A, s.Command.B)
			}
			return true
		},
	})

	dispatched, skipped := 0, 0
	for _, s := range steps {
		if s.Skipped() {
			skipped++
		} else {
			dispatched++
		}
	}
	fmt.Printf("\n📋 Sequence: %d dispatched, %d skipped\n", dispatched, skipped)
	return err
}

// runREPL reads x,y targets from stdin until quit.
func runREPL(ctx context.Context, arm *motion.Arm) error {
	fmt.Println("Enter targets as x,y (quit/exit/q to stop)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("target> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Println("👋 Bye")
			return nil
		}

		target, err := parseTarget(line)
		if err != nil {
			fmt.Printf("⚠️  %v\n", err)
			continue
		}

		angles, err := arm.Geometry().Solve(target)
		if err != nil {
			fmt.Printf("❌ Unreachable: (%.1f, %.1f)\n", target.X, target.Y)
			continue
		}
		if err := arm.MoveTo(ctx, target); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Printf("❌ %v\n", err)
			continue
		}
		fmt.Printf("✅ A %.2f° B %.2f°\n", angles.A, angles.B)
	}
	return scanner.Err()
}

func parseTarget(line string) (kinematics.Point, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return kinematics.Point{}, fmt.Errorf("want x,y got %q", line)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return kinematics.Point{}, fmt.Errorf("bad x %q", parts[0])
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return kinematics.Point{}, fmt.Errorf("bad y %q", parts[1])
	}
	return kinematics.Point{X: x, Y: y}, nil
}

func printReport(rep *motion.Report) {
	fmt.Printf("\n📋 Run %s: %d dispatched, %d skipped in %v\n",
		rep.ID, rep.Dispatched, rep.Skipped, rep.Elapsed.Round(time.Millisecond))
}
