// Package cache provides Redis-based caching for quick session reads.
// The cache is never the source of truth; the event ledger is.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RedisClient is an interface for Redis operations.
// This allows for easy mocking in tests.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values ...interface{}) error
}

// SessionCache provides fast access to live session snapshots, so leaderboard
// and spectator reads never touch the engine's lock.
type SessionCache struct {
	client     RedisClient
	expiration time.Duration
}

// NewSessionCache creates a new session cache instance.
func NewSessionCache(client RedisClient) *SessionCache {
	return &SessionCache{
		client:     client,
		expiration: 15 * time.Minute,
	}
}

// SessionState represents the cached state of a live session.
type SessionState struct {
	SessionID   string  `json:"session_id"`
	Mode        string  `json:"mode"`
	Phase       string  `json:"phase"`
	Score       int     `json:"score"`
	Streak      int     `json:"streak"`
	Tier        int     `json:"tier"`
	Tension     float64 `json:"tension"`
	CurrentGame string  `json:"current_game"`
	LastSync    int64   `json:"last_sync"` // Unix timestamp
}

// SetSessionState caches the current state of a session.
func (c *SessionCache) SetSessionState(ctx context.Context, state SessionState) error {
	key := c.sessionKey(state.SessionID)

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	return c.client.Set(ctx, key, data, c.expiration)
}

// GetSessionState retrieves the cached state of a session.
func (c *SessionCache) GetSessionState(ctx context.Context, sessionID string) (*SessionState, error) {
	key := c.sessionKey(sessionID)

	data, err := c.client.Get(ctx, key)
	if err != nil {
		return nil, err // Cache miss or error
	}

	var state SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}

	return &state, nil
}

// SetLeaderboard caches the current top scores as a Redis hash.
func (c *SessionCache) SetLeaderboard(ctx context.Context, scores map[string]int) error {
	key := "arena:leaderboard"

	values := make([]interface{}, 0, len(scores)*2)
	for id, score := range scores {
		values = append(values, id, fmt.Sprintf("%d", score))
	}

	return c.client.HSet(ctx, key, values...)
}

// GetLeaderboard retrieves the cached top scores.
func (c *SessionCache) GetLeaderboard(ctx context.Context) (map[string]string, error) {
	return c.client.HGetAll(ctx, "arena:leaderboard")
}

// InvalidateSession removes all cached state for a session.
func (c *SessionCache) InvalidateSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.sessionKey(sessionID))
}

// sessionKey generates the Redis key for a specific session.
func (c *SessionCache) sessionKey(sessionID string) string {
	return fmt.Sprintf("arena:session:%s", sessionID)
}
