package backend

import (
	"context"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
	"budget/internal/storage/jsonfile"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.openRepository(config)
	if err != nil {
		return nil, err
	}

	// Initialize AMQP client (optional)
	var publisher services.ChangePublisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			publisher = amqpClient
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewBudgetService(repo, publisher, nil, config.ReportCacheTTL, f.logger)

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type.String(),
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service:    svc,
		Repository: repo,
		Cleanup:    svc.Close,
	}, nil
}

// CreateReader implements Factory.CreateReader
func (f *DefaultFactory) CreateReader(ctx context.Context, config Config) (*ReaderResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		snap := jsonfile.NewSnapshot(config.DataFile)
		f.logger.InfoContext(ctx, "Initialized JSON reader", "path", config.DataFile)
		return &ReaderResult{Source: snap, Cleanup: snap.Close}, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite reader", "db_path", config.SQLiteDBPath)
		return &ReaderResult{Source: repo, Cleanup: repo.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) openRepository(config Config) (storage.Repository, error) {
	switch config.Type {
	case JSONBackend:
		repo, err := jsonfile.Open(config.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSON store: %w", err)
		}
		f.logger.Info("Initialized JSON backend", "path", config.DataFile)
		return repo, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
