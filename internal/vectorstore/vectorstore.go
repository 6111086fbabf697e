// Package vectorstore holds the record type shared by the vector index
// backends (pinecone, pgvector, memory) and the ingestion pipeline.
package vectorstore

import "github.com/tbourn/faq-chat-backend/internal/rag"

// Metadata keys stored alongside each vector.
const (
	MetaID       = "id"
	MetaQuestion = "question"
	MetaAnswer   = "answer"
	MetaCategory = "category"
)

// Record is one FAQ entry with its embedding.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Category string    `json:"category,omitempty"`
}

// Match converts r into a rag.Match with the given score.
func (r Record) Match(score float64) rag.Match {
	q, a := r.Question, r.Answer
	return rag.Match{ID: r.ID, Score: score, Question: &q, Answer: &a, Category: r.Category}
}
