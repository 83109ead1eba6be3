// Package storage defines the persistence ports and the SQLite backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// inTx runs fn inside a database transaction, rolling back on error.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	ts, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ts, nil
}

// AddTransactions inserts all of ts in one database transaction.
func (r *SQLiteRepository) AddTransactions(ctx context.Context, ts ...core.Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(ts))
	err := r.inTx(ctx, func(q *Queries) error {
		for _, t := range ts {
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			if err := q.CreateTransaction(ctx, t); err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(out))
	return out, nil
}

func (r *SQLiteRepository) ReplaceTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	t.ID = id
	n, err := r.queries.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, &core.NotFoundError{Kind: KindTransaction, ID: id}
	}
	return t, nil
}

func (r *SQLiteRepository) RemoveTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: KindTransaction, ID: id}
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	es, err := r.queries.ListLedgerEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return es, nil
}

func (r *SQLiteRepository) AddLedgerEntries(ctx context.Context, es ...core.LedgerEntry) ([]core.LedgerEntry, error) {
	out := make([]core.LedgerEntry, 0, len(es))
	err := r.inTx(ctx, func(q *Queries) error {
		for _, e := range es {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if err := q.CreateLedgerEntry(ctx, e); err != nil {
				return fmt.Errorf("create ledger entry: %w", err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Ledger entries saved to SQLite", "count", len(out))
	return out, nil
}

func (r *SQLiteRepository) ReplaceLedgerEntry(ctx context.Context, id string, e core.LedgerEntry) (core.LedgerEntry, error) {
	e.ID = id
	n, err := r.queries.UpdateLedgerEntry(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("update ledger entry: %w", err)
	}
	if n == 0 {
		return core.LedgerEntry{}, &core.NotFoundError{Kind: KindLedgerEntry, ID: id}
	}
	return e, nil
}

func (r *SQLiteRepository) RemoveLedgerEntry(ctx context.Context, id string) error {
	n, err := r.queries.DeleteLedgerEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: KindLedgerEntry, ID: id}
	}
	slog.InfoContext(ctx, "Ledger entry deleted from SQLite", "id", id)
	return nil
}
