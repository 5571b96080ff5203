package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockRedis is an in-memory RedisClient for tests.
type mockRedis struct {
	kv     map[string]string
	hashes map[string]map[string]string
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		kv:     make(map[string]string),
		hashes: make(map[string]map[string]string),
	}
}

func (m *mockRedis) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.kv[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case string:
		m.kv[key] = v
	case []byte:
		m.kv[key] = string(v)
	default:
		return errors.New("unsupported value type")
	}
	return nil
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.hashes, k)
	}
	return nil
}

func (m *mockRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func (m *mockRedis) HSet(ctx context.Context, key string, values ...interface{}) error {
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		field, _ := values[i].(string)
		val, _ := values[i+1].(string)
		m.hashes[key][field] = val
	}
	return nil
}

func TestSessionStateRoundtrip(t *testing.T) {
	client := newMockRedis()
	c := NewSessionCache(client)
	ctx := context.Background()

	state := SessionState{
		SessionID:   "S1",
		Mode:        "ENDLESS",
		Phase:       "PLAYING",
		Score:       1250,
		Streak:      7,
		Tier:        3,
		Tension:     1.42,
		CurrentGame: "StroopShift",
		LastSync:    time.Now().Unix(),
	}

	if err := c.SetSessionState(ctx, state); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.GetSessionState(ctx, "S1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *got != state {
		t.Errorf("Roundtrip mismatch:\nwant %+v\ngot  %+v", state, *got)
	}
}

func TestGetSessionStateMiss(t *testing.T) {
	c := NewSessionCache(newMockRedis())
	if _, err := c.GetSessionState(context.Background(), "GHOST"); err == nil {
		t.Error("Expected an error on cache miss")
	}
}

func TestInvalidateSession(t *testing.T) {
	client := newMockRedis()
	c := NewSessionCache(client)
	ctx := context.Background()

	c.SetSessionState(ctx, SessionState{SessionID: "S1", Score: 100})
	if err := c.InvalidateSession(ctx, "S1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := c.GetSessionState(ctx, "S1"); err == nil {
		t.Error("State survived invalidation")
	}
}

func TestLeaderboardRoundtrip(t *testing.T) {
	c := NewSessionCache(newMockRedis())
	ctx := context.Background()

	scores := map[string]int{"S1": 900, "S2": 1450}
	if err := c.SetLeaderboard(ctx, scores); err != nil {
		t.Fatalf("SetLeaderboard failed: %v", err)
	}

	got, err := c.GetLeaderboard(ctx)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if got["S1"] != "900" || got["S2"] != "1450" {
		t.Errorf("Leaderboard mismatch: %+v", got)
	}
}

func TestMemoryClientBacksTheSessionCache(t *testing.T) {
	c := NewSessionCache(NewMemoryClient())
	ctx := context.Background()

	state := SessionState{
		SessionID:   "S7",
		Mode:        "ENDLESS",
		Phase:       "PLAYING",
		Score:       640,
		Streak:      4,
		Tier:        3,
		Tension:     0.82,
		CurrentGame: "STROOP_SHIFT",
	}
	if err := c.SetSessionState(ctx, state); err != nil {
		t.Fatalf("SetSessionState failed: %v", err)
	}

	got, err := c.GetSessionState(ctx, "S7")
	if err != nil {
		t.Fatalf("GetSessionState failed: %v", err)
	}
	if got.Score != 640 || got.Tier != 3 || got.CurrentGame != "STROOP_SHIFT" {
		t.Errorf("State mismatch: %+v", got)
	}

	if err := c.SetLeaderboard(ctx, map[string]int{"S7": 640}); err != nil {
		t.Fatalf("SetLeaderboard failed: %v", err)
	}
	board, err := c.GetLeaderboard(ctx)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if board["S7"] != "640" {
		t.Errorf("Leaderboard mismatch: %+v", board)
	}
}

func TestMemoryClientExpiresEntries(t *testing.T) {
	m := NewMemoryClient()
	ctx := context.Background()

	m.Set(ctx, "k", "v", 5*time.Millisecond)
	if got, err := m.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("Get before expiry = %q, %v", got, err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := m.Get(ctx, "k"); err == nil {
		t.Error("Entry survived its expiration window")
	}
}

func TestMemoryClientDelClearsHashes(t *testing.T) {
	m := NewMemoryClient()
	ctx := context.Background()

	m.HSet(ctx, "board", "S1", 100, "S2", 200)
	if err := m.Del(ctx, "board"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	got, err := m.HGetAll(ctx, "board")
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Hash survived Del: %+v", got)
	}
}
