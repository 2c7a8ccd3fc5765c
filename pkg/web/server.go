// Package web serves the arm dashboard: REST endpoints for motion
// commands and websocket feeds for live status, step, and camera
// streams.
package web

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/fivebarlabs/go-fivebar/pkg/motion"
	"github.com/fivebarlabs/go-fivebar/pkg/telemetry"
)

// ArmState is the dashboard snapshot broadcast on every change.
type ArmState struct {
	Running    bool    `json:"running"`
	RunID      string  `json:"run_id,omitempty"`
	Path       string  `json:"path,omitempty"`
	Dispatched int     `json:"dispatched"`
	Skipped    int     `json:"skipped"`
	LastX      float64 `json:"last_x"`
	LastY      float64 `json:"last_y"`
}

// Server is the dashboard server. One run executes at a time; starting
// a second while one is active is rejected.
type Server struct {
	app    *fiber.App
	port   string
	arm    *motion.Arm
	logger *slog.Logger

	state   ArmState
	stateMu sync.RWMutex

	statusFeed *telemetry.Feed
	stepFeed   *telemetry.Feed
	cameraFeed *telemetry.Feed

	// Run ownership. cancel aborts the active run at its next
	// iteration boundary.
	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc

	// OnCaptureFrame supplies a JPEG for the snapshot endpoint when a
	// camera is attached.
	OnCaptureFrame func() ([]byte, error)
}

// NewServer builds the dashboard around an arm.
func NewServer(arm *motion.Arm, port string) *Server {
	s := &Server{
		port:       port,
		arm:        arm,
		logger:     slog.Default().With("component", "web"),
		statusFeed: telemetry.NewFeed("status"),
		stepFeed:   telemetry.NewFeed("steps"),
		cameraFeed: telemetry.NewFeed("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Fivebar Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/geometry", s.handleGeometry)
	api.Post("/move", s.handleMove)
	api.Post("/sequence", s.handleSequence)
	api.Post("/rectangle", s.handleRectangle)
	api.Post("/stop", s.handleStop)
	api.Get("/frame", s.handleFrame)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/steps", websocket.New(s.handleStepsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the feeds and blocks serving HTTP.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", "http://localhost:"+s.port)

	go s.statusFeed.Run()
	go s.stepFeed.Run()
	go s.cameraFeed.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server and aborts any active run.
func (s *Server) Shutdown() error {
	s.stopRun()
	return s.app.Shutdown()
}

// UpdateState mutates the snapshot under lock and broadcasts it.
func (s *Server) UpdateState(update func(*ArmState)) {
	s.stateMu.Lock()
	update(&s.state)
	state := s.state
	s.stateMu.Unlock()

	s.statusFeed.BroadcastJSON(state)
}

// SendCameraFrame broadcasts a JPEG frame to camera clients.
func (s *Server) SendCameraFrame(jpeg []byte) {
	s.cameraFeed.PublishFrame(jpeg)
}

// beginRun claims the single run slot. It returns a context for the run
// and false when another run is already active.
func (s *Server) beginRun() (context.Context, bool) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	return ctx, true
}

// endRun releases the run slot.
func (s *Server) endRun() {
	s.runMu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running = false
	s.runMu.Unlock()
}

// stopRun aborts the active run, if any.
func (s *Server) stopRun() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// runActive reports whether a run currently holds the slot.
func (s *Server) runActive() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}
