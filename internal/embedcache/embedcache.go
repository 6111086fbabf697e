// Package embedcache memoizes embeddings in an expiring LRU so repeated
// questions skip the embedding service.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/faq-chat-backend/internal/rag"
)

// Wrap returns e decorated with an LRU of the given size and TTL. A
// non-positive size or TTL returns e unchanged. model namespaces the keys.
func Wrap(e rag.Embedder, model string, size int, ttl time.Duration) rag.Embedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruEmbedder{
		next:  e,
		model: model,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type lruEmbedder struct {
	next  rag.Embedder
	model string
	cache *expirable.LRU[string, []float32]
}

func (l *lruEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(l.model, text)
	if cached, ok := l.cache.Get(key); ok {
		log.Ctx(ctx).Debug().Msg("embedding cache hit")
		return cloneEmbedding(cached), nil
	}
	res, err := l.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(res) > 0 {
		l.cache.Add(key, cloneEmbedding(res))
	}
	return res, nil
}

func cacheKey(model, text string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	hash := sha256.Sum256([]byte(text))
	return "embed:" + model + ":" + hex.EncodeToString(hash[:])
}

func cloneEmbedding(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
