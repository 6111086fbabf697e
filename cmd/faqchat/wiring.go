package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/faq-chat-backend/internal/config"
	"github.com/tbourn/faq-chat-backend/internal/embedcache"
	"github.com/tbourn/faq-chat-backend/internal/ingest"
	"github.com/tbourn/faq-chat-backend/internal/provider/gemini"
	"github.com/tbourn/faq-chat-backend/internal/provider/openai"
	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore/memory"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore/pgvector"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore/pinecone"
)

// vectorBackend is what every index backend offers.
type vectorBackend interface {
	rag.VectorIndex
	ingest.Upserter
}

// backends holds the raw upstream clients selected by config.
type backends struct {
	completer     rag.Completer
	queryEmbedder rag.Embedder
	docEmbedder   rag.Embedder
	embedModel    string
	index         vectorBackend

	// flush persists index writes; only the memory backend needs it.
	flush   func() error
	closers []func() error
}

func (b *backends) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{flush: func() error { return nil }}

	switch cfg.LLMProvider {
	case "gemini":
		gc, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.Gemini.APIKey,
			ChatModel:  cfg.Gemini.ChatModel,
			EmbedModel: cfg.Gemini.EmbedModel,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		b.completer, b.queryEmbedder, b.docEmbedder = gc, gc, gc.ForDocuments()
		b.embedModel = gc.ModelName()
	default:
		oc, err := openai.New(openai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			ChatModel:  cfg.OpenAI.ChatModel,
			EmbedModel: cfg.OpenAI.EmbedModel,
		})
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		b.completer, b.queryEmbedder, b.docEmbedder = oc, oc, oc
		b.embedModel = oc.ModelName()
	}

	switch cfg.Vector.Backend {
	case "pgvector":
		st, err := pgvector.Open(ctx, cfg.Vector.PGVectorDSN)
		if err != nil {
			return nil, fmt.Errorf("pgvector: %w", err)
		}
		if err := st.ApplyMigrations(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("pgvector migrations: %w", err)
		}
		b.index = st
		b.closers = append(b.closers, st.Close)
	case "memory":
		st, err := memory.Open(cfg.Vector.MemoryIndexPath)
		if err != nil {
			return nil, fmt.Errorf("memory index: %w", err)
		}
		b.index = st
		if cfg.Vector.MemoryIndexPath != "" {
			b.flush = st.Save
		}
	default:
		st, err := pinecone.New(cfg.Vector.PineconeAPIKey, cfg.Vector.PineconeHost)
		if err != nil {
			return nil, fmt.Errorf("pinecone: %w", err)
		}
		b.index = st
		b.closers = append(b.closers, st.Close)
	}

	log.Info().
		Str("llm_provider", cfg.LLMProvider).
		Str("vector_backend", cfg.Vector.Backend).
		Str("embed_model", b.embedModel).
		Msg("upstreams configured")
	return b, nil
}

// buildPipeline decorates the upstreams with deadlines, metrics and the
// embedding cache, then assembles the retrieval pipeline.
func buildPipeline(cfg config.Config, b *backends) (*rag.Pipeline, error) {
	completer := rag.InstrumentCompleter(rag.WithTimeout(b.completer, cfg.UpstreamTimeout))
	embedder := embedcache.Wrap(
		rag.InstrumentEmbedder(rag.EmbedderWithTimeout(b.queryEmbedder, cfg.UpstreamTimeout)),
		b.embedModel, cfg.EmbedCacheSize, cfg.EmbedCacheTTL,
	)
	index := rag.InstrumentIndex(rag.IndexWithTimeout(b.index, cfg.UpstreamTimeout))

	return rag.NewPipeline(rag.Config{
		TopK:                   cfg.RAG.TopK,
		ScoreThreshold:         cfg.RAG.ScoreThreshold,
		Namespace:              cfg.RAG.Namespace,
		RewriteFallbackOnError: cfg.RAG.RewriteFallbackOnError,
	}, completer, embedder, index)
}
