// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for LogFeedback.
//
// Error semantics:
//   - Duplicate feedback (same chat_log_id,user_id) relies on the database
//     unique constraint and is returned as a raw DB error. The service layer
//     translates that into services.ErrDuplicateFeedback.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/faq-chat-backend/internal/domain"
)

// CreateFeedback inserts a rating for the given chat log and user.
// Value must be -1 or 1; the schema check rejects anything else.
func CreateFeedback(ctx context.Context, db *gorm.DB, chatLogID, userID string, value int) error {
	fb := &domain.LogFeedback{
		ID:        uuid.NewString(),
		ChatLogID: chatLogID,
		UserID:    userID,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(fb).Error
}

// FeedbackSummary returns the number of positive and negative ratings for a log.
func FeedbackSummary(ctx context.Context, db *gorm.DB, chatLogID string) (up, down int64, err error) {
	q := db.WithContext(ctx).Model(&domain.LogFeedback{}).Where("chat_log_id = ?", chatLogID)
	if err = q.Session(&gorm.Session{}).Where("value = 1").Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err = q.Session(&gorm.Session{}).Where("value = -1").Count(&down).Error; err != nil {
		return 0, 0, err
	}
	return up, down, nil
}
