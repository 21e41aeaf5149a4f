package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"censusqc/internal/census"
)

// Manager holds the active sessions, keyed by table ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
	metrics  *Metrics
}

// NewManager creates an empty session manager.
func NewManager(logger *slog.Logger, metrics *Metrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger.With(slog.String("component", "session_manager")),
		metrics:  metrics,
	}
}

// Create registers a new session for a loaded table and returns it.
func (m *Manager) Create(table *census.Table) *Session {
	id := uuid.New().String()
	session := NewSession(id, table, m.logger, m.metrics)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.logger.Info("session created",
		slog.String("table_id", id),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", len(table.Columns())))
	return session
}

// Get returns the session for a table ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("table %s not found", id)
	}
	return session, nil
}

// Delete removes a session after waiting for its pending rescores.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("table %s not found", id)
	}
	session.WaitForRescore()
	m.logger.Info("session deleted", slog.String("table_id", id))
	return nil
}

// IDs lists the active session IDs.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
