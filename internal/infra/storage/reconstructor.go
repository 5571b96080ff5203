// Package storage - reconstructor.go
// Rebuilds a session recap from the event log. State = f(events): the live
// snapshot is convenience, the ledger is truth.
package storage

import (
	"context"
	"fmt"
)

// Reconstructor rebuilds session state from the event log. Used for the
// post-game replay screen and for auditing a suspicious score.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new state reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RebuiltSummary holds the tallies recomputed from the ledger.
type RebuiltSummary struct {
	SessionID   string  `json:"session_id"`
	Correct     int     `json:"correct"`
	Wrong       int     `json:"wrong"`
	Score       int     `json:"score"`
	PeakTension float64 `json:"peak_tension"`
	GameSwitches int    `json:"game_switches"`
}

// RecapEvent is a simplified event for the replay screen.
type RecapEvent struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"` // Human-readable description
}

// RebuildSummary replays a session's ledger into a summary.
func (r *Reconstructor) RebuildSummary(ctx context.Context, sessionID string) (*RebuiltSummary, error) {
	evts, err := r.eventRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for %s: %w", sessionID, err)
	}

	out := &RebuiltSummary{SessionID: sessionID}
	for _, e := range evts {
		switch e.EventType {
		case "ANSWER":
			if ok, _ := e.Payload["correct"].(bool); ok {
				out.Correct++
				if pts, isNum := e.Payload["points"].(float64); isNum {
					out.Score += int(pts)
				}
			} else {
				out.Wrong++
			}
		case "TENSION_CHANGE":
			if peak, isNum := e.Payload["peak"].(float64); isNum && peak > out.PeakTension {
				out.PeakTension = peak
			}
		case "GAME_SWITCH":
			out.GameSwitches++
		}
	}
	return out, nil
}

// Recap converts a session's ledger into human-readable lines, newest last.
func (r *Reconstructor) Recap(ctx context.Context, sessionID string) ([]RecapEvent, error) {
	evts, err := r.eventRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for %s: %w", sessionID, err)
	}

	var recap []RecapEvent
	for _, e := range evts {
		line := RecapEvent{
			Timestamp: e.Timestamp.Format("15:04:05"),
			EventType: e.EventType,
		}
		switch e.EventType {
		case "SESSION_START":
			line.Summary = "Session started"
		case "GAME_SWITCH":
			line.Summary = fmt.Sprintf("Switched to %v", e.Payload["to"])
		case "ANSWER":
			if ok, _ := e.Payload["correct"].(bool); ok {
				line.Summary = fmt.Sprintf("Correct answer in %s (+%v)", e.GameID, e.Payload["points"])
			} else {
				line.Summary = fmt.Sprintf("Wrong answer in %s", e.GameID)
			}
		case "TIER_CHANGE":
			line.Summary = fmt.Sprintf("Difficulty moved %v -> %v", e.Payload["from"], e.Payload["to"])
		case "CONTINUE_USED":
			line.Summary = "Continue grant used"
		case "SESSION_END":
			line.Summary = fmt.Sprintf("Session ended: %v", e.Payload["reason"])
		default:
			continue
		}
		recap = append(recap, line)
	}
	return recap, nil
}
