// Package handlers implements the JSON endpoints of the chat API. Every
// failure is answered with ErrorResponse:
//
//	{"request_id": "...", "code": "not_found", "error": "chat log not found"}
//
// 5xx bodies always carry InternalErrorText; the cause goes to the log only.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/faq-chat-backend/internal/http/middleware"
)

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID for log correlation.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Machine-readable code, one of the ErrCode constants.
	Code string `json:"code" example:"bad_request"`
	// Display text.
	Error string `json:"error" example:"message 필드가 비어 있습니다."`
}

func abortWith(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Error:     msg,
	})
}

// fail answers with a client-visible error. Statuses >= 500 are also logged.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Msg(msg)
	}
	abortWith(c, status, code, msg)
}

// failInternal logs err and answers 500 without exposing it.
func failInternal(c *gin.Context, code string, err error) {
	middleware.LoggerFrom(c).Error().Err(err).Str("code", code).Msg("request failed")
	abortWith(c, http.StatusInternalServerError, code, InternalErrorText)
}

// Fail lets the router answer NoRoute/NoMethod with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
