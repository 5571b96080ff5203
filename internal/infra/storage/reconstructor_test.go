package storage

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// memoryEventRepo is an in-memory EventRepository for tests.
type memoryEventRepo struct {
	events []SessionEvent
}

func (m *memoryEventRepo) Append(ctx context.Context, event SessionEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memoryEventRepo) GetBySessionID(ctx context.Context, sessionID string) ([]SessionEvent, error) {
	var out []SessionEvent
	for _, e := range m.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryEventRepo) GetByEventType(ctx context.Context, sessionID, eventType string) ([]SessionEvent, error) {
	var out []SessionEvent
	for _, e := range m.events {
		if e.SessionID == sessionID && e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

func seedLedger(repo *memoryEventRepo, sessionID string) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seq := 0
	add := func(eventType, gameID string, payload map[string]interface{}) {
		seq++
		repo.events = append(repo.events, SessionEvent{
			ID:        fmt.Sprintf("EVT_%03d", seq),
			SessionID: sessionID,
			Timestamp: ts,
			EventType: eventType,
			GameID:    gameID,
			Payload:   payload,
		})
		ts = ts.Add(2 * time.Second)
	}

	add("SESSION_START", "", map[string]interface{}{"mode": "TIMED"})
	add("GAME_SWITCH", "MathBlitz", map[string]interface{}{"from": "", "to": "MathBlitz"})
	add("ANSWER", "MathBlitz", map[string]interface{}{"correct": true, "points": float64(215)})
	add("TENSION_CHANGE", "MathBlitz", map[string]interface{}{"tension": 0.24, "peak": 0.24})
	add("GAME_SWITCH", "MemoryGrid", map[string]interface{}{"from": "MathBlitz", "to": "MemoryGrid"})
	add("ANSWER", "MemoryGrid", map[string]interface{}{"correct": false})
	add("TENSION_CHANGE", "MemoryGrid", map[string]interface{}{"tension": 0.17, "peak": 0.24})
	add("ANSWER", "MemoryGrid", map[string]interface{}{"correct": true, "points": float64(150)})
	add("SESSION_END", "MemoryGrid", map[string]interface{}{"reason": "TIME_UP"})
}

func TestRebuildSummaryFromLedger(t *testing.T) {
	repo := &memoryEventRepo{}
	seedLedger(repo, "S1")

	rec := NewReconstructor(repo)
	sum, err := rec.RebuildSummary(context.Background(), "S1")
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	if sum.Correct != 2 {
		t.Errorf("Expected 2 correct, got %d", sum.Correct)
	}
	if sum.Wrong != 1 {
		t.Errorf("Expected 1 wrong, got %d", sum.Wrong)
	}
	if sum.Score != 365 {
		t.Errorf("Expected score 365, got %d", sum.Score)
	}
	if sum.PeakTension != 0.24 {
		t.Errorf("Expected peak tension 0.24, got %f", sum.PeakTension)
	}
	if sum.GameSwitches != 2 {
		t.Errorf("Expected 2 game switches, got %d", sum.GameSwitches)
	}
}

func TestRebuildSummaryEmptySession(t *testing.T) {
	rec := NewReconstructor(&memoryEventRepo{})
	sum, err := rec.RebuildSummary(context.Background(), "GHOST")
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if sum.Correct != 0 || sum.Wrong != 0 || sum.Score != 0 {
		t.Errorf("Expected zeroed summary for an unknown session, got %+v", sum)
	}
}

func TestRecapProducesReadableLines(t *testing.T) {
	repo := &memoryEventRepo{}
	seedLedger(repo, "S1")

	rec := NewReconstructor(repo)
	lines, err := rec.Recap(context.Background(), "S1")
	if err != nil {
		t.Fatalf("Recap failed: %v", err)
	}

	// TENSION_CHANGE entries are analytics, not recap lines.
	if len(lines) != 7 {
		t.Fatalf("Expected 7 recap lines, got %d", len(lines))
	}
	if lines[0].Summary != "Session started" {
		t.Errorf("Unexpected opening line: %q", lines[0].Summary)
	}
	if lines[len(lines)-1].Summary != "Session ended: TIME_UP" {
		t.Errorf("Unexpected closing line: %q", lines[len(lines)-1].Summary)
	}
	for _, l := range lines {
		if l.Summary == "" || l.Timestamp == "" {
			t.Errorf("Blank recap line: %+v", l)
		}
	}
}
