package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event SessionEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, session_id, timestamp, event_type, game_id, question, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.Timestamp, event.EventType,
		event.GameID, event.Question, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]SessionEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var e SessionEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.SessionID, &e.Timestamp, &e.EventType,
			&e.GameID, &e.Question, &payloadStr,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetBySessionID(ctx context.Context, sessionID string) ([]SessionEvent, error) {
	query := `SELECT id, session_id, timestamp, event_type, game_id, question, payload FROM events WHERE session_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sessionID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID, eventType string) ([]SessionEvent, error) {
	query := `SELECT id, session_id, timestamp, event_type, game_id, question, payload FROM events WHERE session_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sessionID, eventType)
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Upsert(ctx context.Context, snapshot SessionSnapshot) error {
	query := `
		INSERT INTO sessions (session_id, mode, phase, score, best_streak, correct, wrong, session_xp, peak_tension, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			mode=excluded.mode,
			phase=excluded.phase,
			score=excluded.score,
			best_streak=excluded.best_streak,
			correct=excluded.correct,
			wrong=excluded.wrong,
			session_xp=excluded.session_xp,
			peak_tension=excluded.peak_tension,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.SessionID, snapshot.Mode, snapshot.Phase, snapshot.Score,
		snapshot.BestStreak, snapshot.Correct, snapshot.Wrong,
		snapshot.SessionXP, snapshot.PeakTension, time.Now(),
	)
	return err
}

func (r *SQLiteSnapshotRepository) GetBySessionID(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	query := `SELECT session_id, mode, phase, score, best_streak, correct, wrong, session_xp, peak_tension, last_updated FROM sessions WHERE session_id = ?`
	var s SessionSnapshot
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &s.Mode, &s.Phase, &s.Score, &s.BestStreak,
		&s.Correct, &s.Wrong, &s.SessionXP, &s.PeakTension, &s.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteSnapshotRepository) ListRecent(ctx context.Context, limit int) ([]SessionSnapshot, error) {
	query := `SELECT session_id, mode, phase, score, best_streak, correct, wrong, session_xp, peak_tension, last_updated FROM sessions ORDER BY last_updated DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []SessionSnapshot
	for rows.Next() {
		var s SessionSnapshot
		if err := rows.Scan(&s.SessionID, &s.Mode, &s.Phase, &s.Score, &s.BestStreak, &s.Correct, &s.Wrong, &s.SessionXP, &s.PeakTension, &s.LastUpdated); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
