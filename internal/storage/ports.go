package storage

import (
	"context"

	"budget/internal/core"
)

// Ports implemented by the persistence backends. Mutations assign IDs to new
// records and return the stored value; unknown IDs yield *core.NotFoundError.
type (
	TransactionRepository interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		AddTransactions(ctx context.Context, ts ...core.Transaction) ([]core.Transaction, error)
		ReplaceTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
		RemoveTransaction(ctx context.Context, id string) error
	}

	LedgerRepository interface {
		ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error)
		AddLedgerEntries(ctx context.Context, es ...core.LedgerEntry) ([]core.LedgerEntry, error)
		ReplaceLedgerEntry(ctx context.Context, id string, e core.LedgerEntry) (core.LedgerEntry, error)
		RemoveLedgerEntry(ctx context.Context, id string) error
	}

	// Repository is the full store used by the service layer.
	Repository interface {
		TransactionRepository
		LedgerRepository
		Close() error
	}
)

// Record kinds used in NotFoundError and change events.
const (
	KindTransaction = "transaction"
	KindLedgerEntry = "ledger_entry"
)
