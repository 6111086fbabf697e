package rag

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "rag/Pipeline"

// Pipeline runs Rewrite -> Embed -> Retrieve -> Select in strict sequence.
type Pipeline struct {
	cfg       Config
	rewriter  Rewriter
	embedder  Embedder
	retriever Retriever
}

// NewPipeline validates cfg and wires the three capabilities.
func NewPipeline(cfg Config, c Completer, e Embedder, idx VectorIndex) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		rewriter:  Rewriter{Completer: c},
		embedder:  e,
		retriever: Retriever{Index: idx, TopK: cfg.TopK, Namespace: cfg.Namespace},
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Answer resolves message against the FAQ index. Any stage failure aborts
// the run; no partial result is returned.
func (p *Pipeline) Answer(ctx context.Context, message string) (QueryResult, error) {
	tr := otel.Tracer(tracerName)
	ctx, span := tr.Start(ctx, "Answer")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return QueryResult{}, ErrEmptyMessage
	}
	logger := log.Ctx(ctx)

	query, err := p.rewrite(ctx, message)
	if err != nil {
		if !p.cfg.RewriteFallbackOnError {
			return QueryResult{}, fail(span, err)
		}
		logger.Warn().Err(err).Msg("rewrite failed; embedding raw message")
		query = message
	}

	vec, err := p.embed(ctx, query)
	if err != nil {
		return QueryResult{}, fail(span, err)
	}

	matches, err := p.retrieve(ctx, vec)
	if err != nil {
		return QueryResult{}, fail(span, err)
	}

	res := Select(matches, p.cfg.ScoreThreshold)
	res.RewrittenQuery = query

	ev := logger.Debug().Str("query", query).Int("matches", len(matches)).Bool("found", res.Found)
	if res.Score != nil {
		ev = ev.Float64("best_score", *res.Score)
		span.SetAttributes(attribute.Float64("rag.best_score", *res.Score))
	}
	ev.Msg("rag answer")
	span.SetAttributes(attribute.Bool("rag.found", res.Found))
	return res, nil
}

func (p *Pipeline) rewrite(ctx context.Context, message string) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, StageRewrite)
	defer span.End()
	out, err := p.rewriter.Rewrite(ctx, message)
	if err != nil {
		return "", fail(span, err)
	}
	return out, nil
}

func (p *Pipeline) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, StageEmbed)
	defer span.End()
	vec, err := embedQuery(ctx, p.embedder, text)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("rag.dims", len(vec)))
	return vec, nil
}

func (p *Pipeline) retrieve(ctx context.Context, vec []float32) ([]Match, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, StageQuery,
		trace.WithAttributes(
			attribute.Int("rag.top_k", p.cfg.TopK),
			attribute.String("rag.namespace", p.cfg.Namespace),
		),
	)
	defer span.End()
	matches, err := p.retriever.Retrieve(ctx, vec)
	if err != nil {
		return nil, fail(span, err)
	}
	return matches, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
