package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// KeyFunc selects the identity used to key a rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the caller's X-User-ID and falls back to the
// client IP for anonymous callers, so unidentified clients do not share a
// single bucket.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(userIDKey); ok {
			if s, ok := v.(string); ok && s != "" && s != AnonymousUser {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimitOptions configures RateLimiter.
type RateLimitOptions struct {
	RPS   float64 // tokens per second
	Burst int     // bucket size; values <= 0 become 1
	Key   KeyFunc // defaults to KeyByUserOrIP

	// Paths restricts limiting to these route patterns (gin FullPath).
	// Empty means every route is limited.
	Paths []string

	MaxKeys int           // bucket cache size; default 10000
	IdleTTL time.Duration // bucket lifetime since last use; default 10m
}

// RateLimiter is a per-identity token bucket limiter. Buckets live in a
// bounded expiring LRU, so idle and excess identities are evicted.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	key   KeyFunc
	paths map[string]struct{}

	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
	now     func() time.Time
}

// NewRateLimiter builds a RateLimiter from opt.
func NewRateLimiter(opt RateLimitOptions) *RateLimiter {
	if opt.Burst <= 0 {
		opt.Burst = 1
	}
	if opt.Key == nil {
		opt.Key = KeyByUserOrIP()
	}
	if opt.MaxKeys <= 0 {
		opt.MaxKeys = 10000
	}
	if opt.IdleTTL <= 0 {
		opt.IdleTTL = 10 * time.Minute
	}
	var paths map[string]struct{}
	if len(opt.Paths) > 0 {
		paths = make(map[string]struct{}, len(opt.Paths))
		for _, p := range opt.Paths {
			paths[p] = struct{}{}
		}
	}
	return &RateLimiter{
		rps:     rate.Limit(opt.RPS),
		burst:   opt.Burst,
		key:     opt.Key,
		paths:   paths,
		buckets: expirable.NewLRU[string, *rate.Limiter](opt.MaxKeys, nil, opt.IdleTTL),
		now:     time.Now,
	}
}

// bucket returns the limiter for key, creating it on first use. Every
// lookup re-adds the entry so its TTL counts from the last request.
func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	lim, ok := rl.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(rl.rps, rl.burst)
	}
	rl.buckets.Add(key, lim)
	return lim
}

// Len reports the number of live buckets.
func (rl *RateLimiter) Len() int { return rl.buckets.Len() }

// IsRateBypass reports whether IdempotencyValidator marked this request as
// a replay, which is served without consuming tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limit. Rejected requests get 429 with Retry-After
// (whole seconds until a token is available) and
//
//	{"request_id": "...", "code": "rate_limited", "error": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.paths != nil {
			if _, ok := rl.paths[c.FullPath()]; !ok {
				c.Next()
				return
			}
		}
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		lim := rl.bucket(rl.key(c))
		if lim.AllowN(now, 1) {
			c.Next()
			return
		}

		httpRateLimited.WithLabelValues(routePath(c)).Inc()
		c.Header("Retry-After", retryAfter(lim, now))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"error":      "rate limit exceeded",
		})
	}
}

// retryAfter estimates when the next token arrives without consuming it.
func retryAfter(lim *rate.Limiter, now time.Time) string {
	if lim.Limit() == 0 {
		return "60"
	}
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return "60"
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	if d == rate.InfDuration {
		return "60"
	}
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
