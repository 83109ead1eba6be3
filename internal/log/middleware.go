package log

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, c *gin.Context) {
	fields := NewFields().
		WithHTTPRequest(c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery, c.Request.UserAgent()).
		WithClientIP(c.ClientIP())

	FromContext(ctx).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request at a level derived from
// the status code.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, c *gin.Context, durationMs int64) {
	status := c.Writer.Status()
	level := slog.LevelInfo
	if status >= 400 && status < 500 {
		level = slog.LevelWarn
	} else if status >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery, "").
		WithHTTPResponse(status, durationMs).
		WithClientIP(c.ClientIP()).
		WithComponent(ComponentHTTP)
	if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
		fields[FieldError] = errs.String()
	}

	FromContext(ctx).Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogRecordChanged logs a persisted mutation of a budget record
func (sl *StructuredLogger) LogRecordChanged(ctx context.Context, kind, op, id string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithRecord(kind, id).
		WithOperation(op)

	sl.logger.WithComponent(ComponentBudget).InfoContext(ctx, "Record changed", all.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, all.ToSlice()...)
}
