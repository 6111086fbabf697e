// Package services – ChatService
//
// This file implements ChatService, the application-level component behind
// POST /api/chat. It validates the message, runs the retrieval pipeline,
// records every answered request as a ChatLog, and serves idempotent replays
// from previously recorded logs.
//
// Observability: public methods are OpenTelemetry-instrumented and log
// through the request-scoped zerolog logger found on the context.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/rag"
	"github.com/tbourn/faq-chat-backend/internal/repo"
)

// Answerer resolves a user message against the FAQ index.
type Answerer interface {
	Answer(ctx context.Context, message string) (rag.QueryResult, error)
}

// AnswerRequest is the input of ChatService.Answer.
type AnswerRequest struct {
	UserID  string
	Message string
	// Scope and IdempotencyKey are optional; both must be set to enable replay.
	Scope          string
	IdempotencyKey string
}

// ChatAnswer is the pipeline result plus persistence metadata.
type ChatAnswer struct {
	rag.QueryResult
	// LogID is empty when the log write failed.
	LogID string
	// Replayed is true when the result was served from an idempotency record.
	Replayed bool
}

// ChatService answers chat messages and records them.
type ChatService struct {
	DB       *gorm.DB
	Pipeline Answerer

	// MaxMessageRunes rejects longer messages with ErrTooLong (0 disables).
	MaxMessageRunes int
	// IdempotencyTTL is how long replay records stay valid.
	IdempotencyTTL time.Duration
}

// Answer validates the message, replays a prior result when the idempotency
// key matches, and otherwise runs the pipeline and records a ChatLog. Log
// and idempotency write failures are logged and do not fail the request.
func (s *ChatService) Answer(ctx context.Context, req AnswerRequest) (*ChatAnswer, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Answer",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.Bool("idempotent", req.IdempotencyKey != ""),
		),
	)
	defer span.End()

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(msg) > s.MaxMessageRunes {
		return nil, ErrTooLong
	}

	if prev, ok := s.replay(ctx, req); ok {
		span.SetAttributes(attribute.Bool("replayed", true))
		return prev, nil
	}

	res, err := s.Pipeline.Answer(ctx, msg)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := &ChatAnswer{QueryResult: res}
	lg := log.Ctx(ctx)

	l, err := repo.CreateChatLog(ctx, s.DB, domain.ChatLog{
		Question:       msg,
		RewrittenQuery: res.RewrittenQuery,
		Answer:         res.Answer,
		SourceQuestion: res.SourceQuestion,
		Score:          res.Score,
		Found:          res.Found,
	})
	if err != nil {
		lg.Error().Err(err).Msg("chat log write failed")
		return out, nil
	}
	out.LogID = l.ID
	span.SetAttributes(attribute.String("chat_log.id", l.ID))

	if req.IdempotencyKey != "" && req.Scope != "" {
		_, err := repo.CreateIdempotency(ctx, s.DB, req.UserID, req.Scope, req.IdempotencyKey, l.ID, 200, s.ttl())
		if err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg.Warn().Err(err).Msg("idempotency record write failed")
		}
	}
	return out, nil
}

// HasReplay reports whether an unexpired idempotency record exists. It
// matches middleware.IdempotencyLookup.
func (s *ChatService) HasReplay(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *ChatService) replay(ctx context.Context, req AnswerRequest) (*ChatAnswer, bool) {
	if req.IdempotencyKey == "" || req.Scope == "" {
		return nil, false
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, req.UserID, req.Scope, req.IdempotencyKey, time.Now().UTC())
	if err != nil {
		return nil, false
	}
	l, err := repo.GetChatLog(ctx, s.DB, rec.ChatLogID)
	if err != nil {
		return nil, false
	}
	return &ChatAnswer{
		QueryResult: rag.QueryResult{
			Found:          l.Found,
			Answer:         l.Answer,
			SourceQuestion: l.SourceQuestion,
			Score:          l.Score,
			RewrittenQuery: l.RewrittenQuery,
		},
		LogID:    l.ID,
		Replayed: true,
	}, true
}

func (s *ChatService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}
