// Package storage provides the persistence layer for the arena server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// SessionEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type SessionEvent struct {
	ID        string                 `json:"id" db:"id"`
	SessionID string                 `json:"session_id" db:"session_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	GameID    string                 `json:"game_id" db:"game_id"`
	Question  int                    `json:"question" db:"question"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event SessionEvent) error

	// GetBySessionID retrieves all events for one session, oldest first.
	GetBySessionID(ctx context.Context, sessionID string) ([]SessionEvent, error)

	// GetByEventType retrieves all events of a specific type within a session.
	GetByEventType(ctx context.Context, sessionID, eventType string) ([]SessionEvent, error)
}

// SessionSnapshot represents the last persisted state of a session for quick
// reads and crash recovery.
type SessionSnapshot struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	Mode        string    `json:"mode" db:"mode"`
	Phase       string    `json:"phase" db:"phase"`
	Score       int       `json:"score" db:"score"`
	BestStreak  int       `json:"best_streak" db:"best_streak"`
	Correct     int       `json:"correct" db:"correct"`
	Wrong       int       `json:"wrong" db:"wrong"`
	SessionXP   int       `json:"session_xp" db:"session_xp"`
	PeakTension float64   `json:"peak_tension" db:"peak_tension"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// SnapshotRepository defines the interface for session state snapshots.
type SnapshotRepository interface {
	// Upsert updates or inserts a session snapshot.
	Upsert(ctx context.Context, snapshot SessionSnapshot) error

	// GetBySessionID retrieves a specific session's snapshot.
	GetBySessionID(ctx context.Context, sessionID string) (*SessionSnapshot, error)

	// ListRecent retrieves the most recently updated snapshots.
	ListRecent(ctx context.Context, limit int) ([]SessionSnapshot, error)
}
