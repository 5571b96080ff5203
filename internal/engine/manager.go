// Package engine - manager.go
// Registry of live sessions. The transport layer resolves session ids here;
// sessions themselves stay single-owner.
package engine

import (
	"sync"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/events"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/logger"
)

// Manager tracks every live session on this server.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewManager creates an empty session registry.
func NewManager(eventLog *events.EventLog, log *logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		eventLog: eventLog,
		logger:   log,
	}
}

// Create builds, registers, and starts a new session.
func (m *Manager) Create(cfg SessionConfig) *Session {
	s := NewSession(cfg, m.eventLog, m.logger)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	s.Start()
	m.logger.Event("SESSION_CREATED", s.ID(), "Mode:"+string(cfg.Mode))
	return s
}

// Get resolves a session id, or nil when unknown.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove ends and forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if s != nil {
		s.End()
	}
}

// Active returns the number of live (non-finished) sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if s.Phase() != PhaseGameOver {
			n++
		}
	}
	return n
}

// Snapshot lists every tracked session's summary.
func (m *Manager) Snapshot() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Summary())
	}
	return out
}
