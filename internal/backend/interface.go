package backend

import (
	"context"
	"time"

	"budget/internal/services"
	"budget/internal/storage"
	"budget/internal/worker"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired service, the repository behind it and a
// cleanup function releasing both.
type BackendResult struct {
	Service    *services.BudgetService
	Repository storage.Repository
	Cleanup    CleanupFunc
}

// ReaderResult is the read-only view used by the mirror worker.
type ReaderResult struct {
	Source  worker.Source
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the store and wires the budget service on top.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)

	// CreateReader opens the store for reading only.
	CreateReader(ctx context.Context, config Config) (*ReaderResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// JSON specific
	DataFile string

	// SQLite specific
	SQLiteDBPath string

	// Change events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ReportCacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
