package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/engine"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/events"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/logger"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/metrics"
)

// Tuning holds the transport knobs main wires in from configuration.
type Tuning struct {
	SendBuffer        int           // Per-client outbound queue length
	MinActionInterval time.Duration // Per-client action rate limit
}

// DefaultTuning matches a single mobile player per connection.
func DefaultTuning() Tuning {
	return Tuning{SendBuffer: 64, MinActionInterval: 50 * time.Millisecond}
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	manager    *engine.Manager
	tuning     Tuning
}

// NewHub initializes a new WebSocket Hub over the session registry.
func NewHub(manager *engine.Manager, log *logger.Logger, tuning Tuning) *Hub {
	if tuning.SendBuffer <= 0 {
		tuning = DefaultTuning()
	}
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		manager:    manager,
		tuning:     tuning,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a SessionEvent and sends it to all connected clients.
func (h *Hub) BroadcastEvent(event events.SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("Failed to serialize SessionEvent for WebSocket broadcast: %v", err)
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine to poll the EventLog and push new
// events to the Hub. The Hub runs independently from the engine's transition
// path while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessedEvent := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				allEvents := eventLog.Replay()
				newEventsCount := len(allEvents) - lastProcessedEvent

				if newEventsCount > 0 {
					newEvents := allEvents[lastProcessedEvent:]
					for _, event := range newEvents {
						h.BroadcastEvent(event)
					}
					lastProcessedEvent = len(allEvents)
				}
			}
		}
	}()
}
