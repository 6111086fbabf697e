package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// InternalErrorText is the user-facing body text for every 5xx response.
const InternalErrorText = "서버와 통신 중 오류가 발생했습니다."

// Recovery turns a handler panic into a logged stack trace and, when nothing
// has been written yet, a JSON 500:
//
//	{"request_id": "...", "code": "internal_error", "error": InternalErrorText}
//
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "internal_error",
				"error":      InternalErrorText,
			})
		}()
		c.Next()
	}
}
