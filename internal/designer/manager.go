// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"log/slog"
	"sync"
	"time"

	"badgepress/internal/models"
)

// DefaultSessionTTL is how long an idle session survives before the
// sweeper evicts it. An eviction throws away unsaved work, so this errs
// long.
const DefaultSessionTTL = 4 * time.Hour

// Manager owns the open designer sessions. Sessions live in process
// memory: their history stacks are deep and hot, and edits are already
// serialized per session, so an external store would buy nothing but
// marshalling cost.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session registry and starts a background sweeper
// that evicts sessions idle past ttl.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stopCh:
				return
			}
		}
	}()

	return m
}

// Stop terminates the background sweeper.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Open starts a session over a copy of doc and registers it. persisted
// tells whether the template already exists in the store.
func (m *Manager) Open(doc *models.Template, persisted bool) *Session {
	s := NewSession(doc, persisted)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session by id, nil when it does not exist or has
// already been evicted.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close drops a session. Pending unsaved changes are abandoned; the
// persisted template is untouched.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count reports the number of open sessions, for metrics.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sweep evicts sessions idle past the TTL.
func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if len(stale) > 0 {
		slog.Info("evicted idle designer sessions", "count", len(stale))
	}
}
