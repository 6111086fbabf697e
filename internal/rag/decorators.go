package rag

import (
	"context"
	"time"
)

// WithTimeout bounds each call with its own deadline. A zero timeout
// returns the capability unchanged.
func WithTimeout(c Completer, d time.Duration) Completer {
	if d <= 0 {
		return c
	}
	return CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Complete(ctx, req)
	})
}

// EmbedderWithTimeout is WithTimeout for Embedder.
func EmbedderWithTimeout(e Embedder, d time.Duration) Embedder {
	if d <= 0 {
		return e
	}
	return EmbedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return e.Embed(ctx, text)
	})
}

// IndexWithTimeout is WithTimeout for VectorIndex.
func IndexWithTimeout(idx VectorIndex, d time.Duration) VectorIndex {
	if d <= 0 {
		return idx
	}
	return VectorIndexFunc(func(ctx context.Context, req QueryRequest) ([]Match, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return idx.Query(ctx, req)
	})
}
