package trace

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"budget/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"
)

// Middleware handles request tracing and logging
type Middleware struct {
	logger  *log.Logger
	metrics *Metrics
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // in microseconds, of the last request
}

// NewMiddleware creates a new trace middleware
func NewMiddleware(logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &Middleware{
		logger:  logger.WithComponent(log.ComponentHTTP),
		metrics: &Metrics{},
	}
}

// Handler assigns a request ID, stores a request-scoped logger in the
// request context and logs the start and end of every request.
func (m *Middleware) Handler() gin.HandlerFunc {
	structured := log.NewStructuredLogger(m.logger)

	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = GenerateRequestID()
		}
		c.Header(HeaderRequestID, requestID)

		requestLogger := m.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(c.Request.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, requestLogger)
		c.Request = c.Request.WithContext(ctx)

		structured.LogHTTPStart(ctx, c)
		atomic.AddInt64(&m.metrics.TotalRequests, 1)

		c.Next()

		durationMs := time.Since(start).Milliseconds()
		atomic.StoreInt64(&m.metrics.AverageResponseTime, time.Since(start).Microseconds())
		structured.LogHTTPEnd(ctx, c, durationMs)
	}
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       atomic.LoadInt64(&m.metrics.TotalRequests),
		AverageResponseTime: atomic.LoadInt64(&m.metrics.AverageResponseTime),
	}
}
