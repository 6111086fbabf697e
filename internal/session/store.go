package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the full list of sessions as one document.
type Store interface {
	Load(ctx context.Context) ([]ChatSession, error)
	Save(ctx context.Context, sessions []ChatSession) error
}

// FileStore keeps sessions in <Dir>/vibecoding_chat_sessions_v3.json.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

// Path returns the document location.
func (s *FileStore) Path() string { return filepath.Join(s.Dir, StorageKey+".json") }

// Load reads the document. A missing file yields no sessions and no error.
func (s *FileStore) Load(ctx context.Context) ([]ChatSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []ChatSession
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the document atomically (temp file + rename).
func (s *FileStore) Save(ctx context.Context, sessions []ChatSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessions == nil {
		sessions = []ChatSession{}
	}
	b, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, "."+StorageKey+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

// MemoryStore is an in-process Store. LoadErr and SaveErr inject failures.
type MemoryStore struct {
	mu       sync.Mutex
	sessions []ChatSession
	saves    int

	LoadErr error
	SaveErr error
}

// Load returns a copy of the stored sessions.
func (m *MemoryStore) Load(context.Context) ([]ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return cloneSessions(m.sessions), nil
}

// Save stores a copy of sessions.
func (m *MemoryStore) Save(_ context.Context, sessions []ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sessions = cloneSessions(sessions)
	m.saves++
	return nil
}

// Saves reports how many successful saves happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
