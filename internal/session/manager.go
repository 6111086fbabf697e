package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the in-memory session list and persists every mutation.
// It is the single writer for its Store and is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    Store
	log      zerolog.Logger
	sessions []ChatSession // newest first
	activeID string
}

// NewManager returns a Manager backed by store.
func NewManager(store Store, log zerolog.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Open loads persisted sessions and activates the first one. A load failure
// is logged and the manager starts with no sessions.
func (m *Manager) Open(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("session load failed; starting empty")
		sessions = nil
	}
	m.sessions = sessions
	m.activeID = ""
	if len(m.sessions) > 0 {
		m.activeID = m.sessions[0].ID
	}
}

// NewSession prepends an empty session titled DefaultTitle and activates it.
func (m *Manager) NewSession(ctx context.Context) (ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.create(DefaultTitle)
	return cloneSession(s), m.save(ctx)
}

// EnsureActive returns the active session id, creating a session titled
// after firstText when none is active.
func (m *Manager) EnsureActive(ctx context.Context, firstText string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(m.activeID) >= 0 {
		return m.activeID, nil
	}
	s := m.create(TitleFrom(firstText))
	return s.ID, m.save(ctx)
}

// Append adds msg to the end of the session. The first user message of an
// empty session sets its title; titles are never recomputed afterwards.
func (m *Manager) Append(ctx context.Context, sessionID string, msg ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(sessionID)
	if i < 0 {
		return ErrSessionNotFound
	}
	s := &m.sessions[i]
	if len(s.Messages) == 0 && msg.Role == RoleUser {
		s.Title = TitleFrom(msg.Content)
	}
	s.Messages = append(s.Messages, msg)
	return m.save(ctx)
}

// Sessions returns a snapshot of all sessions, newest first.
func (m *Manager) Sessions() []ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSessions(m.sessions)
}

// Active returns the active session, if any.
func (m *Manager) Active() (ChatSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(m.activeID)
	if i < 0 {
		return ChatSession{}, false
	}
	return cloneSession(m.sessions[i]), true
}

// Activate selects an existing session.
func (m *Manager) Activate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return ErrSessionNotFound
	}
	m.activeID = id
	return nil
}

func (m *Manager) create(title string) ChatSession {
	s := ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Messages:  []ChatMessage{},
	}
	m.sessions = append([]ChatSession{s}, m.sessions...)
	m.activeID = s.ID
	return s
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (m *Manager) save(ctx context.Context) error {
	if err := m.store.Save(ctx, m.sessions); err != nil {
		m.log.Error().Err(err).Int("sessions", len(m.sessions)).Msg("session save failed")
		return err
	}
	return nil
}
