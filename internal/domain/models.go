// Package domain defines the persistence models for answered chat requests
// and the feedback left on them. These types are mapped with GORM and form
// the server-side data layer; conversation sessions themselves live on the
// client (see package session).
package domain

import (
	"time"

	"gorm.io/gorm"
)

// ChatLog records one answered POST /api/chat request: the raw question,
// the query actually embedded after rewriting, and the selector's outcome.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Question: the user's message as received (trimmed).
//   - RewrittenQuery: the canonical question produced by the rewriter.
//   - Answer: the stored FAQ answer, or the refusal text when not found.
//   - SourceQuestion: nearest FAQ question, nil when the index returned nothing.
//   - Score: similarity of the nearest match, nil when the index returned nothing.
//   - Found: whether the best match passed the threshold.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type ChatLog struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	Question       string         `json:"question"        gorm:"type:text;not null"`
	RewrittenQuery string         `json:"rewritten_query" gorm:"type:text"`
	Answer         string         `json:"answer"          gorm:"type:text;not null"`
	SourceQuestion *string        `json:"source_question" gorm:"type:text"`
	Score          *float64       `json:"score"`
	Found          bool           `json:"found"           gorm:"not null;default:false"`
	CreatedAt      time.Time      `json:"created_at"      gorm:"index:idx_chat_logs_created"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for ChatLog.
func (ChatLog) TableName() string { return "chat_logs" }

// LogFeedback is a user rating on a chat log entry.
// A user can only leave one rating per log (enforced by unique index).
type LogFeedback struct {
	ID        string         `json:"id"          gorm:"type:char(36);primaryKey"`
	ChatLogID string         `json:"chat_log_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_feedback_log_user"`
	UserID    string         `json:"user_id"     gorm:"type:varchar(64);not null;index;uniqueIndex:ux_feedback_log_user"`
	Value     int            `json:"value"       gorm:"not null;check:value IN (-1,1)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"           gorm:"index"`
	// ChatLog is the rated entry; feedback is cascade-deleted with it.
	ChatLog ChatLog `json:"-" gorm:"foreignKey:ChatLogID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LogFeedback.
func (LogFeedback) TableName() string { return "log_feedback" }
