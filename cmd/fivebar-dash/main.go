// Fivebar Dash - web dashboard for the five-bar arm
//
// Serves the control dashboard and telemetry websockets over a live
// arm (mock or feetech actuator), optionally with a camera stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fivebarlabs/go-fivebar/internal/config"
	"github.com/fivebarlabs/go-fivebar/internal/log"
	"github.com/fivebarlabs/go-fivebar/pkg/actuator"
	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/vision"
	"github.com/fivebarlabs/go-fivebar/pkg/web"
)

func main() {
	httpPort := flag.String("http", "", "Dashboard port (overrides WEB_PORT)")
	act := flag.String("actuator", "mock", "Actuator backend: mock or feetech")
	port := flag.String("port", "", "Serial port for the feetech bus (overrides ARM_PORT)")
	camera := flag.Int("camera", -1, "Camera device ID for the video feed (-1 disables)")
	fps := flag.Int("fps", 10, "Camera stream rate in frames per second")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println("🌐 Fivebar Dashboard")
	fmt.Println("====================")

	backend, err := buildActuator(*act, *port)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	armCfg := motion.DefaultConfig()
	armCfg.Actuator = backend
	arm, err := motion.New(armCfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	listen := *httpPort
	if listen == "" {
		listen = config.WebPort()
	}

	server := web.NewServer(arm, listen)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *camera >= 0 {
		trackerCfg := vision.DefaultConfig()
		trackerCfg.DeviceID = *camera
		tracker, err := vision.NewTracker(trackerCfg)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		defer tracker.Close()

		server.OnCaptureFrame = func() ([]byte, error) {
			jpeg, _, _, err := tracker.ReadFrame()
			return jpeg, err
		}
		go streamCamera(ctx, tracker, server, *fps)
		fmt.Printf("✅ Camera %d streaming at %d fps\n", *camera, *fps)
	}

	server.StartAsync()
	fmt.Printf("✅ Dashboard at http://localhost:%s (actuator: %s)\n", listen, *act)
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\n👋 Shutting down...")
	if err := server.Shutdown(); err != nil {
		fmt.Printf("❌ Shutdown error: %v\n", err)
		os.Exit(1)
	}
}

// streamCamera pushes JPEG frames onto the camera feed until the
// context ends. Read failures are logged and the loop keeps going.
func streamCamera(ctx context.Context, tracker *vision.Tracker, server *web.Server, fps int) {
	if fps <= 0 {
		fps = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jpeg, _, _, err := tracker.ReadFrame()
			if err != nil {
				fmt.Printf("⚠️  %v\n", err)
				continue
			}
			server.SendCameraFrame(jpeg)
		}
	}
}

func buildActuator(kind, port string) (actuator.Actuator, error) {
	switch kind {
	case "mock":
		return actuator.NewMock(), nil
	case "feetech":
		if port == "" {
			port = config.SerialPort("")
		}
		if port == "" {
			return nil, fmt.Errorf("feetech actuator needs -port or ARM_PORT")
		}
		return actuator.NewFeetech(actuator.FeetechConfig{Port: port})
	default:
		return nil, fmt.Errorf("unknown actuator %q (want mock or feetech)", kind)
	}
}
