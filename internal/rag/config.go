package rag

import (
	"errors"
	"strings"
)

// Config holds the retrieval knobs of the pipeline.
type Config struct {
	// TopK is the number of neighbours requested from the index.
	TopK int
	// ScoreThreshold is the minimum similarity for an answer to be returned.
	ScoreThreshold float64
	// Namespace partitions the vector index.
	Namespace string
	// RewriteFallbackOnError embeds the raw message when the rewrite call
	// fails instead of failing the whole request.
	RewriteFallbackOnError bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TopK:           3,
		ScoreThreshold: 0.6,
		Namespace:      "default",
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return errors.New("rag: TopK must be >= 1")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return errors.New("rag: Namespace must not be empty")
	}
	return nil
}
