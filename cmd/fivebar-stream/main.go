// Fivebar Stream - timeline generator and streamer
//
// Generates the square demo timeline or loads one from CSV, previews
// it, optionally saves it, and streams it with wall-clock pacing,
// either to the arm firmware over serial or through the local solver
// onto a feetech bus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fivebarlabs/go-fivebar/internal/config"
	"github.com/fivebarlabs/go-fivebar/internal/log"
	"github.com/fivebarlabs/go-fivebar/pkg/actuator"
	"github.com/fivebarlabs/go-fivebar/pkg/armlink"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/path"
)

const separator = 70

type streamConfig struct {
	CSVIn      string
	Out        string
	TotalTime  time.Duration
	RateHz     int
	Port       string
	Baud       int
	WaitAck    bool
	StartDelay time.Duration
	Local      bool
	Actuator   string
	ListPorts  bool
	Debug      bool
}

func main() {
	cfg := parseFlags()

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println("📡 Fivebar Path Streamer")
	fmt.Println("========================")

	if cfg.ListPorts {
		listPorts()
		return
	}

	tl, err := buildTimeline(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	printPreview(path.Summarize(tl))

	if cfg.Out != "" {
		if err := path.SaveFile(cfg.Out, tl); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Saved %d samples to %s\n", len(tl), cfg.Out)
	}

	if cfg.Local {
		if err := streamLocal(tl, cfg); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Port == "" {
		fmt.Println("No serial port given (-port or ARM_PORT); preview only.")
		return
	}

	if err := stream(tl, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() streamConfig {
	csvIn := flag.String("csv-in", "", "Load timeline from a CSV file instead of generating")
	out := flag.String("out", "", "Save the timeline to a CSV file")
	total := flag.Duration("time", 4*time.Second, "Total time for the generated square")
	rate := flag.Int("rate", 100, "Sampling rate in Hz for the generated square")
	port := flag.String("port", "", "Serial port to stream to (overrides ARM_PORT)")
	baud := flag.Int("baud", 0, "Serial baud rate (overrides ARM_BAUD)")
	waitAck := flag.Bool("wait-ack", false, "Wait for the firmware ack after each sample")
	startDelay := flag.Duration("start-delay", 500*time.Millisecond, "Settle time before the first sample")
	local := flag.Bool("local", false, "Replay through the local solver instead of the firmware")
	act := flag.String("actuator", "mock", "Actuator for -local: mock or feetech")
	listPorts := flag.Bool("list-ports", false, "List serial ports and exit")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg := streamConfig{
		CSVIn:      *csvIn,
		Out:        *out,
		TotalTime:  *total,
		RateHz:     *rate,
		Port:       *port,
		Baud:       *baud,
		WaitAck:    *waitAck,
		StartDelay: *startDelay,
		Local:      *local,
		Actuator:   *act,
		ListPorts:  *listPorts,
		Debug:      *debug,
	}
	if cfg.Port == "" {
		cfg.Port = config.SerialPort("")
	}
	if cfg.Baud == 0 {
		cfg.Baud = config.Baud()
	}
	return cfg
}

func buildTimeline(cfg streamConfig) (path.Timeline, error) {
	if cfg.CSVIn != "" {
		tl, err := path.LoadFile(cfg.CSVIn)
		if err != nil {
			return nil, err
		}
		fmt.Printf("✓ Loaded %d samples from %s\n", len(tl), cfg.CSVIn)
		return tl, nil
	}

	if cfg.RateHz <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %d", cfg.RateHz)
	}
	if cfg.TotalTime <= 0 {
		return nil, fmt.Errorf("square duration must be positive, got %v", cfg.TotalTime)
	}
	square := path.DefaultSquare(cfg.TotalTime)
	interval := time.Second / time.Duration(cfg.RateHz)
	tl := path.SamplePath(square, interval)
	fmt.Printf("✓ Generated %d samples (%v square at %d Hz)\n", len(tl), cfg.TotalTime, cfg.RateHz)
	return tl, nil
}

func printPreview(p path.Preview) {
	line := strings.Repeat("─", separator)
	closed := "No"
	if p.Closed {
		closed = "Yes ✓"
	}

	fmt.Println(line)
	fmt.Println("Path Preview:")
	fmt.Println(line)
	fmt.Printf("  Samples: %d\n", p.Samples)
	fmt.Printf("  Duration: %.1f ms (%.2f sec)\n",
		float64(p.Duration)/float64(time.Millisecond), p.Duration.Seconds())
	fmt.Printf("  X range: [%.6f, %.6f]\n", p.MinX, p.MaxX)
	fmt.Printf("  Y range: [%.6f, %.6f]\n", p.MinY, p.MaxY)
	fmt.Printf("  Closed path: %s\n", closed)
	fmt.Println(line)
}

func stream(tl path.Timeline, cfg streamConfig) error {
	fmt.Printf("\nStreaming to %s at %d baud (wait ack: %v)\n", cfg.Port, cfg.Baud, cfg.WaitAck)

	link, err := armlink.Open(armlink.Config{Port: cfg.Port, Baud: cfg.Baud})
	if err != nil {
		return err
	}
	defer link.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := link.StreamTimeline(ctx, tl, armlink.StreamOptions{
		StartDelay: cfg.StartDelay,
		WaitAck:    cfg.WaitAck,
	}); err != nil {
		return err
	}

	fmt.Println("✓ Stream complete")
	return nil
}

// streamLocal replays the timeline through the IK core, solving each
// sample here instead of on the firmware.
func streamLocal(tl path.Timeline, cfg streamConfig) error {
	var backend actuator.Actuator
	switch cfg.Actuator {
	case "mock":
		backend = actuator.NewMock()
	case "feetech":
		if cfg.Port == "" {
			return fmt.Errorf("feetech actuator needs -port or ARM_PORT")
		}
		var err error
		backend, err = actuator.NewFeetech(actuator.FeetechConfig{Port: cfg.Port})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown actuator %q (want mock or feetech)", cfg.Actuator)
	}
	defer backend.Close()

	armCfg := motion.DefaultConfig()
	armCfg.Actuator = backend
	arm, err := motion.New(armCfg)
	if err != nil {
		return err
	}

	fmt.Printf("\nReplaying locally on %s actuator\n", cfg.Actuator)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rep, err := arm.RunTimeline(ctx, tl, motion.TimelineOptions{StartDelay: cfg.StartDelay})
	if rep != nil {
		fmt.Printf("📋 Run %s: %d dispatched, %d skipped in %v\n",
			rep.ID, rep.Dispatched, rep.Skipped, rep.Elapsed.Round(time.Millisecond))
	}
	if err != nil {
		return err
	}
	fmt.Println("✓ Replay complete")
	return nil
}

func listPorts() {
	ports, err := armlink.Ports()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return
	}
	fmt.Printf("Found %d port(s):\n", len(ports))
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
}
