package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"budget/internal/log"
)

// DefaultRate allows 60 requests per minute per client.
const DefaultRate = "60-M"

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// NewLimiter creates an in-memory limiter from a formatted rate such as
// "60-M" or "1000-H". An empty rate uses DefaultRate.
func NewLimiter(formatted string) (*limiter.Limiter, error) {
	if formatted == "" {
		formatted = DefaultRate
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// Middleware rejects requests over the limit with 429. key defaults to the
// gin client IP.
func Middleware(l *limiter.Limiter, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		k := key(c)

		lctx, err := l.Get(ctx, k)
		if err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentRateLimit).ErrorContext(ctx, "Failed to get rate limit context",
				log.FieldClientIP, k,
				log.FieldError, err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			log.FromContext(ctx).WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, k,
				"limit", lctx.Limit)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
			return
		}

		c.Next()
	}
}
