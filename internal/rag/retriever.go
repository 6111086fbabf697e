package rag

import "context"

// embedQuery calls the embedder once and rejects empty vectors.
func embedQuery(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vec, err := e.Embed(ctx, text)
	if err != nil {
		return nil, upstream(StageEmbed, err)
	}
	if len(vec) == 0 {
		return nil, upstream(StageEmbed, ErrEmptyEmbedding)
	}
	return vec, nil
}

// Retriever queries a vector index with fixed TopK and namespace.
type Retriever struct {
	Index     VectorIndex
	TopK      int
	Namespace string
}

// Retrieve returns up to TopK scored matches with metadata. Ordering is
// whatever the index returns; Select sorts.
func (r Retriever) Retrieve(ctx context.Context, vector []float32) ([]Match, error) {
	matches, err := r.Index.Query(ctx, QueryRequest{
		Vector:          vector,
		TopK:            r.TopK,
		Namespace:       r.Namespace,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, upstream(StageQuery, err)
	}
	return matches, nil
}
