// Package memory is an in-process cosine-similarity FAQ index for local
// development and tests. It can persist itself as a JSON snapshot so that a
// separate ingest run and server share the same data.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore"
)

// Store keeps records per namespace.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]vectorstore.Record
	path string
}

// New returns an empty store. A non-empty path enables Load and Save.
func New(path string) *Store {
	return &Store{data: map[string]map[string]vectorstore.Record{}, path: path}
}

// Open returns a store populated from path when the snapshot exists.
func Open(path string) (*Store, error) {
	s := New(path)
	if path == "" {
		return s, nil
	}
	if err := s.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

// Query returns the TopK records by cosine similarity, ties broken by id.
func (s *Store) Query(ctx context.Context, req rag.QueryRequest) ([]rag.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ns := s.data[req.Namespace]
	type scored struct {
		rec   vectorstore.Record
		score float64
	}
	all := make([]scored, 0, len(ns))
	for _, r := range ns {
		all = append(all, scored{rec: r, score: cosine(req.Vector, r.Values)})
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].rec.ID < all[j].rec.ID
	})
	if req.TopK > 0 && len(all) > req.TopK {
		all = all[:req.TopK]
	}
	out := make([]rag.Match, 0, len(all))
	for _, sc := range all {
		m := sc.rec.Match(sc.score)
		if !req.IncludeMetadata {
			m.Question, m.Answer, m.Category = nil, nil, ""
		}
		out = append(out, m)
	}
	return out, nil
}

// Upsert inserts or replaces recs in namespace and persists the snapshot
// when a path is configured.
func (s *Store) Upsert(ctx context.Context, namespace string, recs []vectorstore.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = map[string]vectorstore.Record{}
		s.data[namespace] = ns
	}
	for _, r := range recs {
		r.Values = append([]float32(nil), r.Values...)
		ns[r.ID] = r
	}
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	return s.Save()
}

// Len returns the number of records in namespace.
func (s *Store) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[namespace])
}

// Load replaces the contents with the snapshot at the configured path.
func (s *Store) Load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	data := map[string]map[string]vectorstore.Record{}
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Save writes the snapshot atomically (temp file + rename).
func (s *Store) Save() error {
	s.mu.RLock()
	b, err := json.Marshal(s.data)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".faqindex-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
