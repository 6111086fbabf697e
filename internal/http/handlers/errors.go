package handlers

import "github.com/tbourn/faq-chat-backend/internal/http/middleware"

// Error codes carried in ErrorResponse.Code. Clients branch on these; the
// error text is for display only.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
	ErrCodeAnswerFailed     = "answer_failed"
	ErrCodeListFailed       = "list_failed"
)

// Texts shown verbatim by the chat widget.
const (
	EmptyMessageText  = "message 필드가 비어 있습니다."
	InternalErrorText = middleware.InternalErrorText
)
