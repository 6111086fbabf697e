// Package services – FeedbackService
//
// This file implements the FeedbackService, which governs how users rate
// answered chat requests (-1 or +1). It enforces log existence and
// one-rating-per-user, and persists feedback atomically. Service-level errors
// (ErrInvalidFeedback, ErrLogNotFound, ErrDuplicateFeedback) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/faq-chat-backend/internal/repo"
)

// FeedbackService implements the use-cases around chat log feedback.
type FeedbackService struct {
	// DB is the database handle used for all feedback operations.
	DB *gorm.DB
}

// Leave records a rating for chatLogID on behalf of userID.
//
// Semantics and validation:
//   - value must be exactly -1 or 1; otherwise ErrInvalidFeedback.
//   - chatLogID must exist; otherwise ErrLogNotFound.
//   - A user may rate a log at most once; otherwise ErrDuplicateFeedback.
//
// The existence check and the insert run in one transaction.
func (s *FeedbackService) Leave(ctx context.Context, userID, chatLogID string, value int) error {
	if value != -1 && value != 1 {
		return ErrInvalidFeedback
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetChatLog(ctx, tx, chatLogID); err != nil {
			if isNotFound(err) {
				return ErrLogNotFound
			}
			return err
		}
		if err := repo.CreateFeedback(ctx, tx, chatLogID, userID, value); err != nil {
			if repo.IsUniqueViolation(err) || isDuplicate(err) {
				return ErrDuplicateFeedback
			}
			return err
		}
		return nil
	})
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey (Postgres: "duplicate key value").
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// Summary returns the up/down rating counts for a chat log.
func (s *FeedbackService) Summary(ctx context.Context, chatLogID string) (up, down int64, err error) {
	if _, err := repo.GetChatLog(ctx, s.DB, chatLogID); err != nil {
		if isNotFound(err) {
			return 0, 0, ErrLogNotFound
		}
		return 0, 0, err
	}
	return repo.FeedbackSummary(ctx, s.DB, chatLogID)
}
