package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budget/internal/cache"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, log.ComponentApp)

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)

	cacheManager := cache.NewManager()
	for _, c := range be.Service.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.Start(ctx, 10*time.Minute)

	srv, err := apphttp.NewServer(apphttp.ServerConfig{
		Addr:           ":" + cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		Ready: func(ctx context.Context) error {
			_, err := be.Repository.ListTransactions(ctx)
			return err
		},
	}, be.Service, logger)
	if err != nil {
		logger.Error("Failed to configure HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := be.Cleanup(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting budget server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", cfg.AMQPEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
