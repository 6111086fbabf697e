// Package pgvector implements rag.VectorIndex and the ingestion upserter on
// PostgreSQL with the pgvector extension.
package pgvector

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const queryNearest = `
	SELECT id, question, answer, category, 1 - (embedding <=> $1) AS score
	FROM faq_entries
	WHERE namespace = $2
	ORDER BY embedding <=> $1
	LIMIT $3
`

const upsertEntry = `
	INSERT INTO faq_entries (namespace, id, question, answer, category, embedding, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (namespace, id) DO UPDATE SET
		question = EXCLUDED.question,
		answer = EXCLUDED.answer,
		category = EXCLUDED.category,
		embedding = EXCLUDED.embedding,
		updated_at = EXCLUDED.updated_at
`

// Store is a pgvector-backed FAQ index.
type Store struct {
	db *sqlx.DB
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore wraps an existing handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

// ApplyMigrations runs the embedded SQL files in name order. Statements
// that fail with "already exists" are skipped.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return err
		}
		for _, q := range strings.Split(string(content), ";") {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, q); err != nil {
				if strings.Contains(err.Error(), "already exists") {
					continue
				}
				return fmt.Errorf("execute query in %s: %w", file, err)
			}
		}
	}
	return nil
}

type entryRow struct {
	ID       string  `db:"id"`
	Question string  `db:"question"`
	Answer   string  `db:"answer"`
	Category string  `db:"category"`
	Score    float64 `db:"score"`
}

// Query returns the TopK entries closest to req.Vector by cosine distance.
// Score is cosine similarity (1 - distance).
func (s *Store) Query(ctx context.Context, req rag.QueryRequest) ([]rag.Match, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, queryNearest, pgvector.NewVector(req.Vector), req.Namespace, req.TopK); err != nil {
		return nil, err
	}
	out := make([]rag.Match, 0, len(rows))
	for _, r := range rows {
		rec := vectorstore.Record{ID: r.ID, Question: r.Question, Answer: r.Answer, Category: r.Category}
		m := rec.Match(r.Score)
		if !req.IncludeMetadata {
			m.Question, m.Answer, m.Category = nil, nil, ""
		}
		out = append(out, m)
	}
	return out, nil
}

// Upsert writes recs into namespace inside one transaction.
func (s *Store) Upsert(ctx context.Context, namespace string, recs []vectorstore.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		if _, err := tx.ExecContext(ctx, upsertEntry,
			namespace, r.ID, r.Question, r.Answer, r.Category, pgvector.NewVector(r.Values),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
