// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatLog
// model: one row per answered chat request.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a log is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateChatLog(ctx, db, log) -> *domain.ChatLog, error
//     Inserts a log with a fresh UUID and UTC timestamp.
//
//   - ListRecentChatLogs(ctx, db, limit) -> []domain.ChatLog, error
//     Newest first, capped at limit.
//
//   - CountChatLogs / ListChatLogsPage
//     Offset pagination over the same ordering.
//
//   - GetChatLog(ctx, db, id) -> *domain.ChatLog, error
//
//   - DeleteChatLogsBefore(ctx, db, cutoff) -> (int64, error)
//     Hard-deletes logs older than cutoff; feedback cascades.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/faq-chat-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateChatLog assigns an ID and CreatedAt (if unset) and inserts the row.
// On success, it returns the persisted log.
func CreateChatLog(ctx context.Context, db *gorm.DB, l domain.ChatLog) (*domain.ChatLog, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// ListRecentChatLogs returns at most limit logs, most recent first.
// A non-positive limit returns every row.
func ListRecentChatLogs(ctx context.Context, db *gorm.DB, limit int) ([]domain.ChatLog, error) {
	var out []domain.ChatLog
	q := db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountChatLogs returns the total number of (non-deleted) logs.
func CountChatLogs(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ChatLog{}).Count(&total).Error
	return total, err
}

// ListChatLogsPage returns a page of logs ordered newest first. Use
// CountChatLogs to obtain the total for pagination metadata.
func ListChatLogsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ChatLog, error) {
	var out []domain.ChatLog
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetChatLog fetches a single log by ID or returns ErrNotFound.
func GetChatLog(ctx context.Context, db *gorm.DB, id string) (*domain.ChatLog, error) {
	var l domain.ChatLog
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteChatLogsBefore permanently removes logs created before cutoff and
// returns the number of rows deleted.
func DeleteChatLogsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&domain.ChatLog{})
	return res.RowsAffected, res.Error
}
