package pgvector

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestQuery_MapsRowsToMatches(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "question", "answer", "category", "score"}).
		AddRow("QA_002", "요금제는?", "세 가지입니다.", "pricing", 0.91).
		AddRow("QA_007", "언어는?", "30개 언어", "language", 0.55)
	mock.ExpectQuery(regexp.QuoteMeta("FROM faq_entries")).
		WithArgs(sqlmock.AnyArg(), "default", 3).
		WillReturnRows(rows)

	out, err := s.Query(context.Background(), rag.QueryRequest{Vector: []float32{0.1, 0.2}, TopK: 3, Namespace: "default", IncludeMetadata: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out) != 2 || out[0].ID != "QA_002" || out[0].Score != 0.91 || *out[0].Answer != "세 가지입니다." || out[1].Category != "language" {
		t.Fatalf("unexpected matches: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQuery_WithoutMetadata(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM faq_entries")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "answer", "category", "score"}).AddRow("a", "q", "x", "", 0.8))

	out, err := s.Query(context.Background(), rag.QueryRequest{Vector: []float32{1}, TopK: 1, Namespace: "n"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if out[0].Question != nil || out[0].Answer != nil {
		t.Fatalf("metadata should be stripped: %+v", out[0])
	}
}

func TestQuery_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM faq_entries")).WillReturnError(errors.New("conn refused"))
	if _, err := s.Query(context.Background(), rag.QueryRequest{Vector: []float32{1}, TopK: 1, Namespace: "n"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUpsert_CommitsBatch(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	for _, id := range []string{"QA_001", "QA_002"} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faq_entries")).
			WithArgs("default", id, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := s.Upsert(context.Background(), "default", []vectorstore.Record{
		{ID: "QA_001", Values: []float32{0.1}, Question: "q1", Answer: "a1"},
		{ID: "QA_002", Values: []float32{0.2}, Question: "q2", Answer: "a2", Category: "pricing"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsert_RollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faq_entries")).WillReturnError(errors.New("dimension mismatch"))
	mock.ExpectRollback()

	err := s.Upsert(context.Background(), "default", []vectorstore.Record{{ID: "QA_001", Values: []float32{0.1}}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	s, mock := newMockStore(t)
	if err := s.Upsert(context.Background(), "default", nil); err != nil {
		t.Fatalf("Upsert(nil): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestApplyMigrations_RunsEmbeddedStatements(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS vector")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS faq_entries")).WillReturnError(errors.New(`relation "faq_entries" already exists`))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_faq_entries_namespace")).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.ApplyMigrations(context.Background()); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
