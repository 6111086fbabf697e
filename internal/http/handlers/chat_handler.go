// Chat HTTP handlers.
//
// This file exposes the endpoint consumed by the chat widget:
//   - POST /api/chat   (answer one message from the FAQ index)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Upstream failures are logged
// server side and surfaced as a single generic 500 text.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/http/middleware"
	"github.com/tbourn/faq-chat-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ChatService answers chat messages.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	Answer(ctx context.Context, req services.AnswerRequest) (*services.ChatAnswer, error)
}

// LogService exposes recorded chat logs.
type LogService interface {
	// Recent returns at most limit logs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.ChatLog, error)
	// ListPage returns a page of logs and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ChatLog, int64, error)
	// ETag returns a weak validator for the current log table state.
	ETag(ctx context.Context) (string, error)
}

// FeedbackService captures user ratings on chat logs.
type FeedbackService interface {
	// Leave submits a feedback value (-1 or 1) for chatLogID by userID.
	Leave(ctx context.Context, userID, chatLogID string, value int) error
	// Summary returns the up/down counts for chatLogID.
	Summary(ctx context.Context, chatLogID string) (up, down int64, err error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for chat, logs, and feedback.
type Handlers struct {
	chatSvc ChatService
	logSvc  LogService
	fbSvc   FeedbackService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(chatSvc ChatService, logSvc LogService, fbSvc FeedbackService) *Handlers {
	return &Handlers{chatSvc: chatSvc, logSvc: logSvc, fbSvc: fbSvc}
}

// userID extracts the caller identity from the Gin context (set by
// middleware.UserIdentity). If absent, it falls back to the "X-User-ID"
// header and finally to "anonymous". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(middleware.HeaderUserID)); h != "" {
			return h
		}
	}
	return middleware.AnonymousUser
}

//
// DTOs
//

// ChatRequest is the JSON payload for POST /api/chat.
type ChatRequest struct {
	// Message is the user question. Blank values are rejected.
	Message string `json:"message" example:"Perso.ai는 어떤 서비스야?"`
}

// ChatResponse is the answer returned to the widget. SourceQuestion and Score
// are null when the index returned no match.
type ChatResponse struct {
	Found          bool     `json:"found" example:"true"`
	Answer         string   `json:"answer" example:"Perso.ai는 AI 기반 영상 더빙 및 번역 서비스입니다."`
	SourceQuestion *string  `json:"sourceQuestion" example:"Perso.ai는 어떤 서비스인가요?"`
	Score          *float64 `json:"score" example:"0.912"`
}

// HeaderChatLogID exposes the persisted log id so clients can leave feedback.
const HeaderChatLogID = middleware.HeaderChatLogID

//
// Handlers
//

// PostChat godoc
// @ID          postChat
// @Summary     Answer a question from the FAQ
// @Description Rewrites the message, retrieves the nearest FAQ entries and returns the stored answer when similar enough.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "Caller identity (optional)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.ChatRequest  true  "Chat message"
//
// @Success     200  {object}  handlers.ChatResponse
// @Header      200  {string}  X-Chat-Log-ID         "Persisted log id"
// @Header      200  {string}  Idempotency-Replayed  "true when served from a stored result"
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long message"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /api/chat [post]
func (h *Handlers) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, EmptyMessageText)
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	out, err := h.chatSvc.Answer(c.Request.Context(), services.AnswerRequest{
		UserID:         userID(c),
		Message:        req.Message,
		Scope:          middleware.IdempotencyScope(c),
		IdempotencyKey: key,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, EmptyMessageText)
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message가 너무 깁니다.")
		default:
			failInternal(c, ErrCodeAnswerFailed, err)
		}
		return
	}

	if out.Replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	if out.LogID != "" {
		c.Header(HeaderChatLogID, out.LogID)
	}
	ok(c, http.StatusOK, ChatResponse{
		Found:          out.Found,
		Answer:         out.Answer,
		SourceQuestion: out.SourceQuestion,
		Score:          out.Score,
	})
}
