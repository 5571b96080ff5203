package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/engine"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// PlayerAction represents an incoming command from the app.
type PlayerAction struct {
	Type      string          `json:"type"`       // "JOIN", "ANSWER", "PAUSE", "RESUME", "CONTINUE", "DECLINE", "ROUND"
	SessionID string          `json:"session_id"` // Which session the action targets
	Payload   json.RawMessage `json:"payload"`    // Action-specific data
}

// AnswerPayload carries the chosen answer index.
type AnswerPayload struct {
	Choice int `json:"choice"`
}

// Client represents an active WebSocket connection bound to one session.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	sessionID      string
	lastActionTime time.Time
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.tuning.SendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	// Rate limiting: a mobile client has no business exceeding this.
	if time.Since(c.lastActionTime) < c.hub.tuning.MinActionInterval {
		c.hub.logger.Warn("Rate limit exceeded for client action on session " + action.SessionID)
		return
	}
	c.lastActionTime = time.Now()

	if action.Type == "JOIN" {
		if c.hub.manager.Get(action.SessionID) == nil {
			c.hub.logger.Error("JOIN for unknown session: " + action.SessionID)
			return
		}
		c.sessionID = action.SessionID
		c.sendRound()
		return
	}

	sessionID := c.sessionID
	if sessionID == "" {
		sessionID = action.SessionID
	}
	session := c.hub.manager.Get(sessionID)
	if session == nil {
		c.hub.logger.Error("PlayerAction for unknown session: " + sessionID)
		return
	}

	switch action.Type {
	case "ANSWER":
		var p AnswerPayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			c.hub.logger.Error("Malformed ANSWER payload: " + err.Error())
			return
		}
		session.SubmitChoice(p.Choice)
		c.sendRound()
	case "PAUSE":
		session.Pause()
	case "RESUME":
		session.Resume()
		c.sendRound()
	case "CONTINUE":
		if session.UseContinue() {
			c.sendRound()
		}
	case "DECLINE":
		session.DeclineContinue()
	case "ROUND":
		c.sendRound()
	default:
		c.hub.logger.Warn("Unknown action type: " + action.Type)
	}
}

// sendRound pushes the current round parameters directly to this client.
func (c *Client) sendRound() {
	session := c.hub.manager.Get(c.sessionID)
	if session == nil || session.Phase() != engine.PhasePlaying {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":  "ROUND",
		"round": session.CurrentRound(),
	})
	if err != nil {
		c.hub.logger.Errorf("Failed to serialize round params: %v", err)
		return
	}
	select {
	case c.send <- data:
		metrics.Get().RecordWSMessage(false)
	default:
		metrics.Get().RecordWSError()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
