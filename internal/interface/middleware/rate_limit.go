package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/pixel-news/pkg/response"
)

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByCaller limits authenticated callers by email and everyone else by address.
func KeyByCaller() KeyFunc {
	return func(c *gin.Context) string {
		caller := CallerFrom(c)
		if !caller.Authenticated {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + strings.ToLower(caller.Email)
	}
}

// windowScript counts a hit and returns {count, remaining window in ms}. The
// expiry is set on the first hit of a window only.
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

var errWindowReply = errors.New("rate limit: unexpected script reply")

// AllowFunc returns true to bypass the limit.
type AllowFunc func(*gin.Context) bool

// hit records one request for key; reset is the time left in the current window.
func hit(c *gin.Context, rdb redis.Cmdable, key string, window time.Duration) (count int, reset time.Duration, err error) {
	vals, err := windowScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, errWindowReply
	}
	if vals[1] > 0 {
		reset = time.Duration(vals[1]) * time.Millisecond
	}
	return int(vals[0]), reset, nil
}

// RateLimit is a fixed-window limiter in Redis. It sets the X-RateLimit-* headers
// and fails open when Redis is unavailable.
func RateLimit(rdb redis.Cmdable, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, reset, err := hit(c, rdb, keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}
		resetSec := int((reset + time.Second - 1) / time.Second)
		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", response.ErrorBody{Code: "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}
