package jsonfile

import (
	"context"

	"budget/internal/core"
)

// Snapshot reads the document from disk on every call, so it observes saves
// made by another process. It is read-only.
type Snapshot struct {
	path string
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.Transactions(), nil
}

func (s *Snapshot) ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.LedgerEntries(), nil
}

func (s *Snapshot) Close() error { return nil }

func (s *Snapshot) load(ctx context.Context) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.path)
}
