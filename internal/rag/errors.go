package rag

import (
	"errors"
	"fmt"
)

// Stage names used in errors, spans and metrics.
const (
	StageRewrite = "rewrite"
	StageEmbed   = "embed"
	StageQuery   = "query"
)

var (
	// ErrEmptyMessage is returned when the message is blank after trimming.
	ErrEmptyMessage = errors.New("empty message")
	// ErrEmptyEmbedding is returned when the embedding service yields no vector.
	ErrEmptyEmbedding = errors.New("empty embedding")
)

// UpstreamError wraps a failure of an external service call.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("rag %s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(stage string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Stage: stage, Err: err}
}
