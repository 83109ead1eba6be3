package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"budget/internal/amqp"
	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/csvio"
	"budget/internal/log"
	"budget/internal/report"
	"budget/internal/storage"
)

// ChangePublisher announces persisted mutations. *amqp.Client implements it.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
	Close() error
}

const reportCacheSize = 64

const ledgerReportKey = "ledger"

// BudgetService orchestrates budget operations across the repository, the
// report caches and the change publisher.
type BudgetService struct {
	repo        storage.Repository
	publisher   ChangePublisher
	categorizer *core.Categorizer
	logger      *log.Logger
	structured  *log.StructuredLogger

	// reportMu guards the generations. A report computed while a mutation
	// of its kind ran is returned but not cached.
	reportMu  sync.Mutex
	txGen     uint64
	ledgerGen uint64
	monthly   *cache.LRUCache[[]core.MonthTotals]
	ledger    *cache.LRUCache[core.LedgerReport]
}

// NewBudgetService wires a service. publisher may be nil, in which case change
// events are skipped. A nil categorizer uses the default keyword rules and a
// zero reportTTL disables report caching.
func NewBudgetService(
	repo storage.Repository,
	publisher ChangePublisher,
	categorizer *core.Categorizer,
	reportTTL time.Duration,
	logger *log.Logger,
) *BudgetService {
	if categorizer == nil {
		categorizer = core.NewCategorizer()
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentBudget)
	return &BudgetService{
		repo:        repo,
		publisher:   publisher,
		categorizer: categorizer,
		logger:      logger,
		structured:  log.NewStructuredLogger(logger),
		monthly:     cache.NewLRUCache[[]core.MonthTotals](reportCacheSize, reportTTL),
		ledger:      cache.NewLRUCache[core.LedgerReport](1, reportTTL),
	}
}

// Caches returns the report caches so a cache.Manager can expire them.
func (s *BudgetService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.monthly, s.ledger}
}

// Categorize returns the category the keyword rules assign to description.
func (s *BudgetService) Categorize(description string) string {
	return s.categorizer.Categorize(description)
}

// ListTransactions returns the stored transactions matching f in insertion
// order.
func (s *BudgetService) ListTransactions(ctx context.Context, f report.TransactionFilter) ([]core.Transaction, error) {
	all, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return report.FilterTransactions(all, f), nil
}

// CreateTransaction validates and stores t. A blank category is filled in by
// the categorizer.
func (s *BudgetService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = s.withCategory(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	added, err := s.repo.AddTransactions(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	saved := added[0]

	s.changed(ctx, storage.KindTransaction, amqp.OpCreate, saved.ID, 0, transactionFields(saved))
	return saved, nil
}

// UpdateTransaction replaces the transaction stored under id.
func (s *BudgetService) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	t = s.withCategory(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.repo.ReplaceTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.changed(ctx, storage.KindTransaction, amqp.OpUpdate, saved.ID, 0, transactionFields(saved))
	return saved, nil
}

// DeleteTransaction removes the transaction stored under id.
func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.repo.RemoveTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.changed(ctx, storage.KindTransaction, amqp.OpDelete, id, 0, nil)
	return nil
}

// ImportTransactions appends every usable row of a transactions CSV and
// returns how many were stored. Rows are kept as written, categories
// included.
func (s *BudgetService) ImportTransactions(ctx context.Context, r io.Reader) (int, error) {
	ts, err := csvio.ImportTransactions(r)
	if err != nil {
		return 0, err
	}
	if len(ts) == 0 {
		return 0, nil
	}

	added, err := s.repo.AddTransactions(ctx, ts...)
	if err != nil {
		return 0, fmt.Errorf("import transactions: %w", err)
	}

	s.changed(ctx, storage.KindTransaction, amqp.OpImport, "", len(added), nil)
	return len(added), nil
}

// ExportTransactions writes the transactions matching f as CSV with the
// summary footer.
func (s *BudgetService) ExportTransactions(ctx context.Context, w io.Writer, f report.TransactionFilter) error {
	ts, err := s.ListTransactions(ctx, f)
	if err != nil {
		return err
	}
	return csvio.ExportTransactions(w, ts)
}

// Categories returns the distinct categories in use, sorted.
func (s *BudgetService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return report.Categories(all), nil
}

// MonthlyReport returns income and expense per month for the transactions
// matching f.
func (s *BudgetService) MonthlyReport(ctx context.Context, f report.TransactionFilter) ([]core.MonthTotals, error) {
	key := filterKey(f)
	if cached, ok := s.monthly.Get(key); ok {
		return cached, nil
	}
	gen := s.generation(&s.txGen)

	ts, err := s.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	months := report.MonthlyIncomeExpense(ts)

	s.reportMu.Lock()
	if s.txGen == gen {
		s.monthly.Set(key, months)
	}
	s.reportMu.Unlock()
	return months, nil
}

// Totals returns income, expense and net over the transactions matching f.
func (s *BudgetService) Totals(ctx context.Context, f report.TransactionFilter) (core.Totals, error) {
	ts, err := s.ListTransactions(ctx, f)
	if err != nil {
		return core.Totals{}, err
	}
	return report.TransactionTotals(ts), nil
}

// ListLedgerEntries returns every ledger entry in insertion order.
func (s *BudgetService) ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	es, err := s.repo.ListLedgerEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return es, nil
}

// CreateLedgerEntry validates and stores e.
func (s *BudgetService) CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}

	added, err := s.repo.AddLedgerEntries(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save ledger entry: %w", err)
	}
	saved := added[0]

	s.changed(ctx, storage.KindLedgerEntry, amqp.OpCreate, saved.ID, 0, ledgerFields(saved))
	return saved, nil
}

// UpdateLedgerEntry replaces the ledger entry stored under id.
func (s *BudgetService) UpdateLedgerEntry(ctx context.Context, id string, e core.LedgerEntry) (core.LedgerEntry, error) {
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}

	saved, err := s.repo.ReplaceLedgerEntry(ctx, id, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("update ledger entry: %w", err)
	}

	s.changed(ctx, storage.KindLedgerEntry, amqp.OpUpdate, saved.ID, 0, ledgerFields(saved))
	return saved, nil
}

// DeleteLedgerEntry removes the ledger entry stored under id.
func (s *BudgetService) DeleteLedgerEntry(ctx context.Context, id string) error {
	if err := s.repo.RemoveLedgerEntry(ctx, id); err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	s.changed(ctx, storage.KindLedgerEntry, amqp.OpDelete, id, 0, nil)
	return nil
}

// ImportLedger appends every usable row of a ledger CSV.
func (s *BudgetService) ImportLedger(ctx context.Context, r io.Reader) (int, error) {
	es, err := csvio.ImportLedger(r)
	if err != nil {
		return 0, err
	}
	if len(es) == 0 {
		return 0, nil
	}

	added, err := s.repo.AddLedgerEntries(ctx, es...)
	if err != nil {
		return 0, fmt.Errorf("import ledger entries: %w", err)
	}

	s.changed(ctx, storage.KindLedgerEntry, amqp.OpImport, "", len(added), nil)
	return len(added), nil
}

// ExportLedger writes every ledger entry as CSV with the summary footer.
func (s *BudgetService) ExportLedger(ctx context.Context, w io.Writer) error {
	es, err := s.ListLedgerEntries(ctx)
	if err != nil {
		return err
	}
	return csvio.ExportLedger(w, es)
}

// LedgerReport returns per-person balances and overall totals.
func (s *BudgetService) LedgerReport(ctx context.Context) (core.LedgerReport, error) {
	if cached, ok := s.ledger.Get(ledgerReportKey); ok {
		return cached, nil
	}
	gen := s.generation(&s.ledgerGen)

	es, err := s.ListLedgerEntries(ctx)
	if err != nil {
		return core.LedgerReport{}, err
	}
	rep := report.PerPersonLedger(es)

	s.reportMu.Lock()
	if s.ledgerGen == gen {
		s.ledger.Set(ledgerReportKey, rep)
	}
	s.reportMu.Unlock()
	return rep, nil
}

func (s *BudgetService) generation(counter *uint64) uint64 {
	s.reportMu.Lock()
	defer s.reportMu.Unlock()
	return *counter
}

func (s *BudgetService) withCategory(t core.Transaction) core.Transaction {
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == "" {
		t.Category = s.categorizer.Categorize(t.Description)
	}
	return t
}

// changed runs after every successful mutation: reports are dropped, the
// change is logged and then published. Publish failures never fail the
// caller since the record is already stored.
func (s *BudgetService) changed(ctx context.Context, kind, op, id string, count int, fields log.LogFields) {
	s.reportMu.Lock()
	switch kind {
	case storage.KindTransaction:
		s.txGen++
		s.monthly.Purge()
	case storage.KindLedgerEntry:
		s.ledgerGen++
		s.ledger.Purge()
	}
	s.reportMu.Unlock()

	if count > 0 {
		if fields == nil {
			fields = log.NewFields()
		}
		fields[log.FieldCount] = count
	}
	s.structured.LogRecordChanged(ctx, kind, op, id, fields)

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Change publisher not available, skipping change message")
		return
	}
	msg := amqp.NewChangeMessage(kind, op, id)
	msg.Count = count
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		s.structured.LogError(ctx, "Failed to publish change message", err, log.ComponentAMQP, op,
			log.NewFields().WithRecord(kind, id))
	}
}

// Close closes both the repository and the publisher.
func (s *BudgetService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %w", errors.Join(errs...))
	}

	return nil
}

func transactionFields(t core.Transaction) log.LogFields {
	return log.NewFields().WithTransaction(t.Amount.String(), t.Date.String(), t.Category, t.Type.String())
}

func ledgerFields(e core.LedgerEntry) log.LogFields {
	return log.NewFields().WithLedgerEntry(e.Name, e.Amount.String(), e.Date.String(), e.Type.String())
}

func filterKey(f report.TransactionFilter) string {
	bound := func(d interface{ String() string }, set bool) string {
		if !set {
			return ""
		}
		return d.String()
	}
	return strings.Join([]string{
		f.Category,
		string(f.DateFrom),
		string(f.DateTo),
		bound(f.MinAmount, f.MinAmount != nil),
		bound(f.MaxAmount, f.MaxAmount != nil),
		strings.ToLower(f.Description),
	}, "\x1f")
}
