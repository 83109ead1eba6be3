package memory

import (
	"context"
	"sync"

	ports "budget/internal/sheets"
)

var _ ports.Mirror = (*Store)(nil)

// Store keeps mirrored tables in memory. It backs the worker when no
// spreadsheet is configured and doubles as a test fake.
type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
	writes int
	err    error
}

func New() *Store {
	return &Store{tables: map[string][][]string{}}
}

// FailWith makes subsequent writes return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// WriteTable replaces the stored table.
func (s *Store) WriteTable(_ context.Context, sheet string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tables[sheet] = cloneRows(rows)
	s.writes++
	return nil
}

// ReadTable returns a copy of the stored table, nil for an unknown sheet.
func (s *Store) ReadTable(_ context.Context, sheet string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.tables[sheet]), nil
}

// Writes returns the number of successful writes.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string{}, row...)
	}
	return out
}
