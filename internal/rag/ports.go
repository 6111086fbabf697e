// Package rag implements the FAQ retrieval pipeline: a user utterance is
// rewritten into a canonical question, embedded, matched against a vector
// index, and the best match is accepted or refused by a score threshold.
//
// Upstream services sit behind three small capability interfaces so the
// pipeline can be exercised with in-process fakes and decorated with
// deadlines, metrics and caching without touching the stage logic.
package rag

import "context"

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
}

// Completer produces the first choice's text for a completion request.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// QueryRequest asks a vector index for the nearest neighbours of Vector.
type QueryRequest struct {
	Vector          []float32
	TopK            int
	Namespace       string
	IncludeMetadata bool
}

// Match is one scored neighbour returned by a VectorIndex. Question and
// Answer are nil when the stored metadata lacks them.
type Match struct {
	ID       string
	Score    float64
	Question *string
	Answer   *string
	Category string
}

// VectorIndex runs nearest-neighbour queries.
type VectorIndex interface {
	Query(ctx context.Context, req QueryRequest) ([]Match, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// VectorIndexFunc adapts a function to VectorIndex.
type VectorIndexFunc func(ctx context.Context, req QueryRequest) ([]Match, error)

// Query calls f.
func (f VectorIndexFunc) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	return f(ctx, req)
}
