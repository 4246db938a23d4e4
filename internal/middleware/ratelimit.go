package middleware

import (
	"math"
	"net/http"
	"strings"
	"time"

	"anoa.com/proofofgrind/pkg/ratelimit"
	"anoa.com/proofofgrind/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// WriteThrottle allows one write per caller per action inside limit. It must
// run after RequireAuth. Redis failures let the request through.
func WriteThrottle(rdb *redis.Client, limit time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, err := response.GetAddress(c)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		action := strings.TrimPrefix(c.FullPath(), "/api/")
		ctx := c.Request.Context()

		allowed, err := ratelimit.CheckAndSetRateLimit(ctx, rdb, addr, action, limit)
		if err != nil {
			logger.Warn("rate limit check failed", zap.String("address", addr), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			ttl, _ := ratelimit.GetRateLimitTTL(ctx, rdb, addr, action)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               "too many requests, slow down",
				"retry_after_seconds": int64(math.Ceil(ttl.Seconds())),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
