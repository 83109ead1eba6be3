package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// ReadyFunc reports whether the server's dependencies can serve requests.
type ReadyFunc func(ctx context.Context) error

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	// RateLimit uses the limiter format, e.g. "60-M". Empty disables it.
	RateLimit string
	Ready     ReadyFunc
}

// Server serves the JSON API.
type Server struct {
	http.Server

	router   *gin.Engine
	tracer   *trace.Middleware
	detector *security.Detector
	ready    ReadyFunc
	logger   *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures middleware and routes, returning a ready-to-run server.
func NewServer(cfg ServerConfig, svc BudgetService, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	if err := registerValidators(); err != nil {
		return nil, err
	}

	s := &Server{
		tracer:   trace.NewMiddleware(logger),
		detector: security.NewDetector(),
		ready:    cfg.Ready,
		logger:   logger.WithComponent(log.ComponentHTTP),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.tracer.Handler())
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if cfg.RateLimit != "" {
		l, err := ratelimit.NewLimiter(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		r.Use(ratelimit.Middleware(l, s.detector.ClientKey))
	}

	r.GET("/healthz", handleHealth)
	r.GET("/readyz", s.handleReady)
	registerRoutes(r.Group("/api/v1"), svc)

	s.router = r
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", trace.HeaderRequestID}
	c.ExposeHeaders = []string{trace.HeaderRequestID, "Content-Disposition"}
	c.MaxAge = 12 * time.Hour

	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Shutdown gracefully shuts down the server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		m := s.tracer.GetMetrics()
		d := s.detector.GetMetrics()
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			"total_requests", m.TotalRequests,
			"suspicious_requests", d.SuspiciousRequests)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleReady(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready(c.Request.Context()); err != nil {
			s.logger.WarnContext(c.Request.Context(), "Readiness check failed", "error", err)
			c.String(http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	c.String(http.StatusOK, "ready")
}
