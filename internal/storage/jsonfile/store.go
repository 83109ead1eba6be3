// Package jsonfile keeps the budget in memory and persists it as a single
// pretty-printed JSON document.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/storage"
)

// Store owns the two ordered record sequences. Insertion order is the
// on-disk order. A Store is not safe for concurrent use; see Repository.
type Store struct {
	transactions []core.Transaction
	ledger       []core.LedgerEntry
}

type document struct {
	Transactions  []core.Transaction `json:"transactions"`
	LedgerEntries []core.LedgerEntry `json:"ledger_entries"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the document at path. A missing file yields an empty store.
// Unreadable or malformed data, including a record missing a required key,
// is a *core.LoadError. Records stored without an ID are given one.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &core.LoadError{Path: path, Err: err}
	}

	s := &Store{transactions: doc.Transactions, ledger: doc.LedgerEntries}
	for i := range s.transactions {
		if s.transactions[i].ID == "" {
			s.transactions[i].ID = uuid.NewString()
		}
	}
	for i := range s.ledger {
		if s.ledger[i].ID == "" {
			s.ledger[i].ID = uuid.NewString()
		}
	}
	return s, nil
}

// Save writes the store to path with four-space indentation. The document
// is written to a sibling temp file and renamed over path, so a failed save
// leaves the previous document intact.
func (s *Store) Save(path string) error {
	doc := document{
		Transactions:  s.Transactions(),
		LedgerEntries: s.LedgerEntries(),
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Clone returns an independent copy of s.
func (s *Store) Clone() *Store {
	return &Store{transactions: s.Transactions(), ledger: s.LedgerEntries()}
}

// Transactions returns a copy of the transactions in insertion order.
func (s *Store) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// LedgerEntries returns a copy of the ledger entries in insertion order.
func (s *Store) LedgerEntries() []core.LedgerEntry {
	out := make([]core.LedgerEntry, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// AddTransaction appends t, assigning an ID when it has none. No dedup.
func (s *Store) AddTransaction(t core.Transaction) core.Transaction {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.transactions = append(s.transactions, t)
	return t
}

// ReplaceTransaction overwrites the transaction with the given ID in place.
// The stored record keeps id regardless of t.ID.
func (s *Store) ReplaceTransaction(id string, t core.Transaction) (core.Transaction, error) {
	i := s.transactionIndex(id)
	if i < 0 {
		return core.Transaction{}, &core.NotFoundError{Kind: storage.KindTransaction, ID: id}
	}
	t.ID = id
	s.transactions[i] = t
	return t, nil
}

// RemoveTransaction deletes the transaction with the given ID.
func (s *Store) RemoveTransaction(id string) error {
	i := s.transactionIndex(id)
	if i < 0 {
		return &core.NotFoundError{Kind: storage.KindTransaction, ID: id}
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	return nil
}

// AddLedgerEntry appends e, assigning an ID when it has none.
func (s *Store) AddLedgerEntry(e core.LedgerEntry) core.LedgerEntry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.ledger = append(s.ledger, e)
	return e
}

// ReplaceLedgerEntry overwrites the entry with the given ID in place.
func (s *Store) ReplaceLedgerEntry(id string, e core.LedgerEntry) (core.LedgerEntry, error) {
	i := s.ledgerIndex(id)
	if i < 0 {
		return core.LedgerEntry{}, &core.NotFoundError{Kind: storage.KindLedgerEntry, ID: id}
	}
	e.ID = id
	s.ledger[i] = e
	return e, nil
}

// RemoveLedgerEntry deletes the entry with the given ID.
func (s *Store) RemoveLedgerEntry(id string) error {
	i := s.ledgerIndex(id)
	if i < 0 {
		return &core.NotFoundError{Kind: storage.KindLedgerEntry, ID: id}
	}
	s.ledger = append(s.ledger[:i], s.ledger[i+1:]...)
	return nil
}

func (s *Store) transactionIndex(id string) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ledgerIndex(id string) int {
	for i, e := range s.ledger {
		if e.ID == id {
			return i
		}
	}
	return -1
}
