// Feedback HTTP handlers.
//
// This file exposes the REST endpoints for rating answered chat requests:
//   - POST /api/logs/{id}/feedback  (create feedback)
//   - GET  /api/logs/{id}/feedback  (up/down summary)
//
// Feedback values are constrained to {-1, +1} to represent negative/positive
// reactions respectively.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/faq-chat-backend/internal/services"
)

// LeaveFeedbackRequest is the JSON payload for creating feedback on a log.
//
// The binding tag enforces the domain constraint at the transport layer.
type LeaveFeedbackRequest struct {
	// Value is the feedback signal: +1 (positive) or -1 (negative).
	Value int `json:"value" binding:"required,oneof=-1 1" example:"1"`
}

// FeedbackSummaryResponse holds aggregated ratings for a log.
type FeedbackSummaryResponse struct {
	Up   int64 `json:"up" example:"3"`
	Down int64 `json:"down" example:"1"`
}

// LeaveFeedback godoc
// @ID          leaveFeedback
// @Summary     Leave feedback on an answer
// @Description Records positive (+1) or negative (-1) feedback for a chat log. One rating per user and log.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Caller identity (optional)"  example(user123)
// @Param       id         path    string  true  "Chat log ID (UUID)"          format(uuid)
// @Param       body       body    handlers.LeaveFeedbackRequest true "Feedback payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object} handlers.ErrorResponse "Chat log not found"
// @Failure     409  {object} handlers.ErrorResponse "Feedback already exists"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /api/logs/{id}/feedback [post]
func (h *Handlers) LeaveFeedback(c *gin.Context) {
	var req LeaveFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value must be -1 or 1")
		return
	}

	err := h.fbSvc.Leave(c.Request.Context(), userID(c), c.Param("id"), req.Value)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrLogNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chat log not found")
	case errors.Is(err, services.ErrInvalidFeedback):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value must be -1 or 1")
	case errors.Is(err, services.ErrDuplicateFeedback):
		fail(c, http.StatusConflict, ErrCodeConflict, "feedback already exists")
	default:
		failInternal(c, ErrCodeInternal, err)
	}
}

// FeedbackSummary godoc
// @ID          feedbackSummary
// @Summary     Feedback counts for an answer
// @Tags        Feedback
// @Produce     json
// @Param       id   path    string  true  "Chat log ID (UUID)"  format(uuid)
// @Success     200  {object} handlers.FeedbackSummaryResponse
// @Failure     404  {object} handlers.ErrorResponse "Chat log not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /api/logs/{id}/feedback [get]
func (h *Handlers) FeedbackSummary(c *gin.Context) {
	up, down, err := h.fbSvc.Summary(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		ok(c, http.StatusOK, FeedbackSummaryResponse{Up: up, Down: down})
	case errors.Is(err, services.ErrLogNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chat log not found")
	default:
		failInternal(c, ErrCodeInternal, err)
	}
}
