package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/pixel-news/internal/interface/middleware"
)

// Limits builds Redis-backed rate limiters, or pass-through handlers when disabled.
type Limits struct {
	Redis   redis.Cmdable
	Enabled bool
}

func (l Limits) Per(max int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	if !l.Enabled || l.Redis == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(l.Redis, max, window, key, middleware.AnyOf(middleware.AllowPrivateIP(), middleware.AllowAdmins()))
}
