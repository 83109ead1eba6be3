package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"budget/internal/core"
)

// Repository serves a Store over the storage ports. Every mutation is applied
// to a copy, saved, and only then made current, so a failed save leaves both
// memory and disk on the previous state.
type Repository struct {
	mu    sync.RWMutex
	path  string
	store *Store
}

// Open loads the document at path, creating an empty store if it does not
// exist yet.
func Open(path string) (*Repository, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	slog.Info("JSON store loaded",
		"path", path,
		"transactions", len(s.transactions),
		"ledger_entries", len(s.ledger))
	return &Repository{path: path, store: s}, nil
}

func (r *Repository) Close() error { return nil }

// mutate runs fn on a copy of the store and commits it after a successful
// save.
func (r *Repository) mutate(ctx context.Context, op string, fn func(*Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.store.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Save(r.path); err != nil {
		slog.ErrorContext(ctx, "Failed to save JSON store", "op", op, "path", r.path, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	r.store = next
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Transactions(), nil
}

func (r *Repository) AddTransactions(ctx context.Context, ts ...core.Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(ts))
	err := r.mutate(ctx, "add transactions", func(s *Store) error {
		for _, t := range ts {
			out = append(out, s.AddTransaction(t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Transactions saved to JSON store", "count", len(out))
	return out, nil
}

func (r *Repository) ReplaceTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	err := r.mutate(ctx, "replace transaction", func(s *Store) (err error) {
		out, err = s.ReplaceTransaction(id, t)
		return err
	})
	return out, err
}

func (r *Repository) RemoveTransaction(ctx context.Context, id string) error {
	return r.mutate(ctx, "remove transaction", func(s *Store) error {
		return s.RemoveTransaction(id)
	})
}

func (r *Repository) ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.LedgerEntries(), nil
}

func (r *Repository) AddLedgerEntries(ctx context.Context, es ...core.LedgerEntry) ([]core.LedgerEntry, error) {
	out := make([]core.LedgerEntry, 0, len(es))
	err := r.mutate(ctx, "add ledger entries", func(s *Store) error {
		for _, e := range es {
			out = append(out, s.AddLedgerEntry(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Ledger entries saved to JSON store", "count", len(out))
	return out, nil
}

func (r *Repository) ReplaceLedgerEntry(ctx context.Context, id string, e core.LedgerEntry) (core.LedgerEntry, error) {
	var out core.LedgerEntry
	err := r.mutate(ctx, "replace ledger entry", func(s *Store) (err error) {
		out, err = s.ReplaceLedgerEntry(id, e)
		return err
	})
	return out, err
}

func (r *Repository) RemoveLedgerEntry(ctx context.Context, id string) error {
	return r.mutate(ctx, "remove ledger entry", func(s *Store) error {
		return s.RemoveLedgerEntry(id)
	})
}
