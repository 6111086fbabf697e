package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID carries the caller-chosen user identifier.
	HeaderUserID = "X-User-ID"
	// AnonymousUser is used when no identity is supplied.
	AnonymousUser = "anonymous"

	userIDKey       = "userID"
	maxUserIDLength = 64
)

// UserIdentity resolves the caller from X-User-ID. There is no
// authentication: the id only scopes idempotency keys, feedback and
// rate-limit buckets. Missing ids become AnonymousUser and values over 64
// bytes are cut to fit the feedback schema.
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if len(uid) > maxUserIDLength {
			uid = uid[:maxUserIDLength]
		}
		if uid == "" {
			uid = AnonymousUser
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// UserIDFrom returns the identity set by UserIdentity, falling back to
// AnonymousUser.
func UserIDFrom(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return AnonymousUser
}
