package telemetry

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/fivebarlabs/go-fivebar/pkg/motion"
)

// Feed owns the set of connected dashboard clients for one event stream
// and broadcasts to all of them.
type Feed struct {
	name   string
	logger *slog.Logger

	clients map[*Client]bool

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	// mu guards the client set for reads from outside the Run loop.
	mu sync.RWMutex

	running bool
}

// NewFeed creates a feed. Run must be started in a goroutine before
// clients attach.
func NewFeed(name string) *Feed {
	return &Feed{
		name:       name,
		logger:     slog.Default().With("component", "telemetry", "feed", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the feed's fan-out loop. It owns all client set mutation.
func (f *Feed) Run() {
	f.running = true
	for {
		select {
		case client := <-f.register:
			f.mu.Lock()
			f.clients[client] = true
			count := len(f.clients)
			f.mu.Unlock()
			f.logger.Info("client connected", "clients", count)

		case client := <-f.unregister:
			f.mu.Lock()
			if _, ok := f.clients[client]; ok {
				delete(f.clients, client)
				close(client.send)
			}
			count := len(f.clients)
			f.mu.Unlock()
			f.logger.Info("client disconnected", "clients", count)

		case msg := <-f.broadcast:
			f.mu.Lock()
			for client := range f.clients {
				select {
				case client.send <- msg:
				default:
					// Client buffer full: drop it rather than stall
					// every other client.
					close(client.send)
					delete(f.clients, client)
					f.logger.Warn("dropped slow client")
				}
			}
			f.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every client. A full queue drops the
// message; the feed never blocks a runner.
func (f *Feed) Broadcast(msg Message) {
	select {
	case f.broadcast <- msg:
	default:
		f.logger.Warn("broadcast queue full, dropping message")
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (f *Feed) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.Broadcast(NewJSONMessage(data))
	return nil
}

// PublishStep broadcasts one runner iteration.
func (f *Feed) PublishStep(s motion.Step) {
	_ = f.BroadcastJSON(NewStepEvent(s))
}

// PublishRun broadcasts a run lifecycle transition.
func (f *Feed) PublishRun(state string, rep *motion.Report) {
	_ = f.BroadcastJSON(NewRunEvent(state, rep))
}

// PublishFrame broadcasts a JPEG camera frame.
func (f *Feed) PublishFrame(frame []byte) {
	f.Broadcast(NewBinaryMessage(frame))
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// IsRunning reports whether the fan-out loop has started.
func (f *Feed) IsRunning() bool {
	return f.running
}
