package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/vectorstore"
)

// Defaults for Indexer.
const (
	DefaultBatchSize = 32
	DefaultPause     = 200 * time.Millisecond
)

// Upserter writes records into a vector index namespace.
type Upserter interface {
	Upsert(ctx context.Context, namespace string, recs []vectorstore.Record) error
}

// Indexer embeds entries and upserts them in batches.
type Indexer struct {
	Embedder  rag.Embedder
	Store     Upserter
	Namespace string
	BatchSize int
	Pause     time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewIndexer returns an Indexer with the default batch size and pause.
func NewIndexer(emb rag.Embedder, store Upserter, namespace string) *Indexer {
	return &Indexer{
		Embedder:  emb,
		Store:     store,
		Namespace: namespace,
		BatchSize: DefaultBatchSize,
		Pause:     DefaultPause,
	}
}

// Build embeds every entry and upserts it. It pauses between full batches
// and flushes the remainder at the end. It returns the number of upserted
// records.
func (ix *Indexer) Build(ctx context.Context, entries []Entry) (int, error) {
	logger := log.Ctx(ctx).With().Str("namespace", ix.Namespace).Logger()
	size := ix.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	sleep := ix.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	total := 0
	batch := make([]vectorstore.Record, 0, size)
	for i, e := range entries {
		vec, err := ix.Embedder.Embed(ctx, e.Text())
		if err != nil {
			return total, fmt.Errorf("embed %s: %w", e.ID, err)
		}
		batch = append(batch, vectorstore.Record{
			ID:       e.ID,
			Values:   vec,
			Question: e.Question,
			Answer:   e.Answer,
			Category: e.Category,
		})

		if len(batch) >= size {
			logger.Info().Int("count", len(batch)).Int("i", i).Msg("upserting batch")
			if err := ix.Store.Upsert(ctx, ix.Namespace, batch); err != nil {
				return total, fmt.Errorf("upsert: %w", err)
			}
			total += len(batch)
			batch = make([]vectorstore.Record, 0, size)
			if err := sleep(ctx, ix.Pause); err != nil {
				return total, err
			}
		}
	}

	if len(batch) > 0 {
		logger.Info().Int("count", len(batch)).Msg("upserting last batch")
		if err := ix.Store.Upsert(ctx, ix.Namespace, batch); err != nil {
			return total, fmt.Errorf("upsert: %w", err)
		}
		total += len(batch)
	}
	logger.Info().Int("total", total).Msg("index build complete")
	return total, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
