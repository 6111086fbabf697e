// Package services defines the business logic for answering chat requests,
// browsing the chat log, and collecting feedback. This file centralizes
// service-level error values so that callers can check them with errors.Is.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"

	"github.com/tbourn/faq-chat-backend/internal/rag"
)

// Chat-related errors.
var (
	// ErrEmptyMessage is returned when the message is blank after trimming.
	ErrEmptyMessage = rag.ErrEmptyMessage

	// ErrTooLong is returned when a message exceeds the configured rune limit.
	ErrTooLong = errors.New("message too long")
)

// Log and feedback errors.
var (
	// ErrLogNotFound indicates that the requested chat log does not exist.
	ErrLogNotFound = errors.New("chat log not found")

	// ErrInvalidFeedback is returned when a feedback value is outside the
	// allowed set (-1 or 1).
	ErrInvalidFeedback = errors.New("feedback value must be -1 or 1")

	// ErrDuplicateFeedback is returned when a user attempts to rate a chat
	// log they have already rated.
	ErrDuplicateFeedback = errors.New("feedback already exists")
)
