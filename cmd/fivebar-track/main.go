// Fivebar Track - green marker tracker
//
// Tracks the arm's green end-effector marker with a webcam, prints
// detections as a table, optionally logs them to CSV, and optionally
// drives the arm to follow the marker.
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
	"github.com/fivebarlabs/go-fivebar/pkg/kinematics"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/vision"
)

type trackConfig struct {
	CameraID int
	CSVOut   string
	Follow   bool
	Port     string
	RateHz   int
	Debug    bool
}

func main() {
	cfg := parseFlags()

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println("🎯 Fivebar Marker Tracker")
	fmt.Println("=========================")

	trackerCfg := vision.DefaultConfig()
	trackerCfg.DeviceID = cfg.CameraID
	tracker, err := vision.NewTracker(trackerCfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer tracker.Close()
	fmt.Printf("✅ Camera %d started\n", cfg.CameraID)

	var csvLog *vision.CSVLogger
	if cfg.CSVOut != "" {
		f, err := os.Create(cfg.CSVOut)
		if err != nil {
			fmt.Printf("❌ Create %s: %v\n", cfg.CSVOut, err)
			os.Exit(1)
		}
		defer f.Close()
		csvLog, err = vision.NewCSVLogger(f)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		defer csvLog.Flush()
		fmt.Printf("✅ Logging to %s\n", cfg.CSVOut)
	}

	var arm *motion.Arm
	if cfg.Follow {
		arm, err = buildArm(cfg)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Follow mode on")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("\nTracking green marker (Ctrl+C to stop)")
	fmt.Printf("%-8s %-10s %-10s %-12s %-12s %-8s\n", "Frame", "X (px)", "Y (px)", "X", "Y", "Area")
	fmt.Println(strings.Repeat("-", separatorWidth))

	track(ctx, tracker, csvLog, arm, cfg)
	fmt.Println("\n👋 Tracker stopped")
}

const separatorWidth = 70

func parseFlags() trackConfig {
	camera := flag.Int("camera", -1, "Camera device ID (overrides CAMERA_ID)")
	csvOut := flag.String("csv", "", "Write detections to this CSV file")
	follow := flag.Bool("follow", false, "Drive the arm toward the marker")
	port := flag.String("port", "", "Serial port for the feetech bus when following")
	rate := flag.Int("rate", 5, "Follow move rate limit in Hz")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg := trackConfig{
		CameraID: *camera,
		CSVOut:   *csvOut,
		Follow:   *follow,
		Port:     *port,
		RateHz:   *rate,
		Debug:    *debug,
	}
	if cfg.CameraID < 0 {
		cfg.CameraID = config.CameraID()
	}
	if cfg.Port == "" {
		cfg.Port = config.SerialPort("")
	}
	return cfg
}

func buildArm(cfg trackConfig) (*motion.Arm, error) {
	var backend actuator.Actuator
	if cfg.Port != "" {
		var err error
		backend, err = actuator.NewFeetech(actuator.FeetechConfig{Port: cfg.Port})
		if err != nil {
			return nil, err
		}
	} else {
		backend = actuator.NewMock()
	}

	armCfg := motion.DefaultConfig()
	armCfg.Actuator = backend
	return motion.New(armCfg)
}

func track(ctx context.Context, tracker *vision.Tracker, csvLog *vision.CSVLogger, arm *motion.Arm, cfg trackConfig) {
	cal := tracker.Config().Calibration

	var moveEvery time.Duration
	if cfg.RateHz > 0 {
		moveEvery = time.Second / time.Duration(cfg.RateHz)
	}
	var lastMove time.Time

	frame := 0
	for {
		if ctx.Err() != nil {
			return
		}

		d, ok, err := tracker.Read()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			return
		}
		frame++
		if !ok {
			continue
		}

		world := cal.ToWorld(d.Pixel)
		fmt.Printf("%-8d %-10.0f %-10.0f %-12.4f %-12.4f %-8.0f\n",
			frame, d.Pixel.X, d.Pixel.Y, world.X, world.Y, d.Area)

		if csvLog != nil {
			if err := csvLog.Log(d, world); err != nil {
				fmt.Printf("⚠️  %v\n", err)
			}
		}

		if arm != nil && time.Since(lastMove) >= moveEvery {
			lastMove = time.Now()
			if err := arm.MoveTo(ctx, world); err != nil && !errors.Is(err, kinematics.ErrUnreachable) {
				fmt.Printf("⚠️  %v\n", err)
			}
		}
	}
}
