package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/log"
	"budget/internal/sheets"
	gsheet "budget/internal/sheets/google"
	mem "budget/internal/sheets/memory"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, log.ComponentWorker)
	logger.Info("Starting budget-worker")

	reader := cli.InitReader(context.Background(), logger, cfg)

	var mirror sheets.Mirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewWithCredentials(context.Background(), cfg.GoogleSpreadsheetID, gsheet.Credentials{
			JSON: cfg.GoogleServiceAccountJSON,
			File: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = mem.New()
		logger.Info("Google Sheets disabled - mirroring to memory only")
	}

	w := worker.NewMirrorWorker(reader.Source, mirror, worker.Config{
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		LedgerSheet:       cfg.GoogleLedgerSheet,
		Interval:          cfg.SyncInterval,
	})

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - relying on periodic mirror only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := w.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Mirror worker stop error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.ErrorContext(ctx, "AMQP close error", log.FieldError, err)
			}
		}
		if err := reader.Cleanup(); err != nil {
			logger.ErrorContext(ctx, "Reader cleanup error", log.FieldError, err)
		}
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", log.FieldError, err)
		os.Exit(1)
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeChanges(ctx, w.HandleChange)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumption failed", log.FieldError, err)
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
