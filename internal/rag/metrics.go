package rag

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// stageCalls counts upstream calls by stage and outcome (ok|error).
	stageCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_stage_calls_total",
			Help: "Total number of RAG upstream calls.",
		},
		[]string{"stage", "outcome"},
	)

	// stageLat records upstream call latency in seconds by stage.
	stageLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rag_stage_duration_seconds",
			Help:    "Duration of RAG upstream calls in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(stageCalls, stageLat)
}

func observe(stage string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	stageCalls.WithLabelValues(stage, outcome).Inc()
	stageLat.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// InstrumentCompleter records rewrite call metrics.
func InstrumentCompleter(c Completer) Completer {
	return CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		start := time.Now()
		out, err := c.Complete(ctx, req)
		observe(StageRewrite, start, err)
		return out, err
	})
}

// InstrumentEmbedder records embed call metrics.
func InstrumentEmbedder(e Embedder) Embedder {
	return EmbedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		start := time.Now()
		vec, err := e.Embed(ctx, text)
		observe(StageEmbed, start, err)
		return vec, err
	})
}

// InstrumentIndex records vector query metrics.
func InstrumentIndex(idx VectorIndex) VectorIndex {
	return VectorIndexFunc(func(ctx context.Context, req QueryRequest) ([]Match, error) {
		start := time.Now()
		m, err := idx.Query(ctx, req)
		observe(StageQuery, start, err)
		return m, err
	})
}
