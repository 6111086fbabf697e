package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUserIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"absent", "", AnonymousUser},
		{"blank", "   ", AnonymousUser},
		{"trimmed", "  u-1 ", "u-1"},
		{"truncated", strings.Repeat("x", 80), strings.Repeat("x", 64)},
	}

	for _, tc := range cases {
		r := gin.New()
		r.Use(UserIdentity())
		var got string
		r.GET("/", func(c *gin.Context) {
			got = UserIDFrom(c)
			c.Status(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(HeaderUserID, tc.header)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
		if got != tc.want {
			t.Fatalf("%s: UserIDFrom = %q; want %q", tc.name, got, tc.want)
		}
	}
}

func TestUserIdentity_FeedsRateLimiterKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UserIdentity())
	var key string
	r.GET("/", func(c *gin.Context) {
		key = KeyByUserOrIP()(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "alice")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if key != "user:alice" {
		t.Fatalf("rate-limit key = %q; want user:alice", key)
	}
}
