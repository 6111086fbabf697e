// Package services – LogService
//
// LogService exposes the recorded chat logs for the admin listing endpoints
// and owns the retention policy that prunes old entries.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/repo"
)

// LogService reads and prunes chat logs.
type LogService struct {
	DB *gorm.DB
}

// Recent returns at most limit logs, newest first.
func (s *LogService) Recent(ctx context.Context, limit int) ([]domain.ChatLog, error) {
	ctx, span := otel.Tracer("services/LogService").Start(ctx, "Recent",
		trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	items, err := repo.ListRecentChatLogs(ctx, s.DB, limit)
	if items == nil {
		items = []domain.ChatLog{}
	}
	return items, err
}

// ListPage returns a page of logs and the total count.
func (s *LogService) ListPage(ctx context.Context, page, pageSize int) ([]domain.ChatLog, int64, error) {
	ctx, span := otel.Tracer("services/LogService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	total, err := repo.CountChatLogs(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ChatLog{}, 0, nil
	}
	items, err := repo.ListChatLogsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ETag returns a weak validator that changes whenever a log is added,
// removed or updated.
func (s *LogService) ETag(ctx context.Context) (string, error) {
	count, maxTS, err := repo.ChatLogsStats(ctx, s.DB)
	if err != nil {
		return "", err
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	return fmt.Sprintf(`W/"logs:%d:%d"`, count, ts), nil
}

// Prune deletes logs older than retention (relative to now) and expired
// idempotency records. It returns the number of logs removed.
func (s *LogService) Prune(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	ctx, span := otel.Tracer("services/LogService").Start(ctx, "Prune")
	defer span.End()

	n, err := repo.DeleteChatLogsBefore(ctx, s.DB, now.Add(-retention))
	if err != nil {
		return 0, err
	}
	if _, err := repo.DeleteExpiredIdempotency(ctx, s.DB, now); err != nil {
		return n, err
	}
	span.SetAttributes(attribute.Int64("deleted", n))
	return n, nil
}
