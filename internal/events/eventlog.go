// Package events provides the append-only session event log.
// Every accepted state transition in a session lands here, so a finished
// session can be replayed answer by answer.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a session event.
type EventType string

const (
	EventTypeSessionStart  EventType = "SESSION_START"
	EventTypeRoundStart    EventType = "ROUND_START"
	EventTypeAnswer        EventType = "ANSWER"
	EventTypeTensionChange EventType = "TENSION_CHANGE"
	EventTypeTierChange    EventType = "TIER_CHANGE"
	EventTypeGameSwitch    EventType = "GAME_SWITCH"
	EventTypeContinueUsed  EventType = "CONTINUE_USED"
	EventTypeSessionEnd    EventType = "SESSION_END"
)

// SessionEvent represents an immutable record of a session transition.
type SessionEvent struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	GameID    string      `json:"game_id"` // Active mini-game, if any
	Question  int         `json:"question"` // 1-indexed question counter
	Payload   interface{} `json:"payload"`  // Event-specific data
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event SessionEvent) error
}

// EventLog is the in-memory append-only log of session events.
type EventLog struct {
	mu        sync.RWMutex
	events    []SessionEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]SessionEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event SessionEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through to persistent storage off the hot path.
		go func(e SessionEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetBySession returns all events belonging to one session.
func (el *EventLog) GetBySession(sessionID string) []SessionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SessionEvent
	for _, e := range el.events {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of one type, oldest first.
func (el *EventLog) GetByType(t EventType) []SessionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SessionEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events for state reconstruction.
func (el *EventLog) Replay() []SessionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
