package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/crazyeights/game/engine"
	"github.com/wricardo/mcp-training/crazyeights/game/rules"
	"github.com/wricardo/mcp-training/crazyeights/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Manager is the session registry: it maps a room code to at most one
// live game and owns creation and teardown. All state is
// memory-resident; a restarted process starts with an empty registry.
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// Create creates a new session with the given room code and game
// parameters. An empty code gets a generated 6-character one.
func (m *Manager) Create(id string, maxPlayers int, r rules.Rules, ruleSet string) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(id)
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sess := &service.Session{
		ID:        key,
		Game:      engine.NewGame(key, maxPlayers, r),
		RuleSet:   ruleSet,
		CreatedAt: time.Now(),
	}
	sess.Touch()
	m.sessions[key] = sess

	return sess, nil
}

// Get retrieves a session by room code (case-insensitive).
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if sess, exists := m.sessions[normalize(id)]; exists {
		return sess, nil
	}
	return nil, ErrSessionNotFound
}

// GetOrCreate gets an existing session or creates a new one. Creation
// is idempotent per room code.
func (m *Manager) GetOrCreate(id string, maxPlayers int, r rules.Rules, ruleSet string) (*service.Session, error) {
	sess, err := m.Get(id)
	if err == nil {
		return sess, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		sess, err = m.Create(id, maxPlayers, r, ruleSet)
		if errors.Is(err, ErrSessionAlreadyExists) {
			// Lost a create race; the winner's session is the one.
			return m.Get(id)
		}
		return sess, err
	}

	return nil, err
}

// List returns all live sessions.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Delete removes a session from the registry.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	sess, exists := m.sessions[normalize(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}
	sess.Touch()
	return nil
}

// CleanupExpiredSessions removes sessions that have not been accessed
// within maxAge and returns how many were removed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, sess := range m.sessions {
		if sess.LastAccessed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 6-character room code.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return strings.ToUpper(hex.EncodeToString(bytes))
}

// normalize makes room-code lookups case-insensitive.
func normalize(id string) string {
	return strings.ToUpper(id)
}
