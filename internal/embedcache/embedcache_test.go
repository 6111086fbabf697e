package embedcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/faq-chat-backend/internal/rag"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func TestWrap_DisabledReturnsInner(t *testing.T) {
	inner := &countingEmbedder{}
	if got := Wrap(inner, "m", 0, time.Minute); got != rag.Embedder(inner) {
		t.Fatalf("size 0 should disable the cache")
	}
	if got := Wrap(inner, "m", 10, 0); got != rag.Embedder(inner) {
		t.Fatalf("ttl 0 should disable the cache")
	}
}

func TestWrap_HitsSkipUpstreamAndClone(t *testing.T) {
	inner := &countingEmbedder{}
	e := Wrap(inner, "text-embedding-3-small", 8, time.Minute)

	first, err := e.Embed(context.Background(), "요금제")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	first[0] = 999 // mutate the returned slice

	second, err := e.Embed(context.Background(), "요금제")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", inner.calls)
	}
	if second[0] == 999 {
		t.Fatalf("cache must hand out copies")
	}

	_, _ = e.Embed(context.Background(), "언어")
	if inner.calls != 2 {
		t.Fatalf("different text should miss, calls=%d", inner.calls)
	}
}

func TestWrap_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("down")}
	e := Wrap(inner, "m", 8, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := e.Embed(context.Background(), "x"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("errors must not be cached, calls=%d", inner.calls)
	}
}

func TestCacheKey_NamespacedByModel(t *testing.T) {
	if cacheKey("a", "x") == cacheKey("b", "x") {
		t.Fatalf("keys should differ per model")
	}
	if cacheKey("", "x") != cacheKey("unknown", "x") {
		t.Fatalf("empty model should normalize to unknown")
	}
}
