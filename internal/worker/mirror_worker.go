package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/csvio"
	"budget/internal/log"
	"budget/internal/sheets"
	"budget/internal/storage"
)

// Source is the read side of the store the worker mirrors.
type Source interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error)
}

// Config holds configuration for the mirror worker
type Config struct {
	TransactionsSheet string
	LedgerSheet       string

	// Interval is how often the full store is re-mirrored as a backstop
	// for lost change messages (default: 5m)
	Interval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		TransactionsSheet: "Transactions",
		LedgerSheet:       "Ledger",
		Interval:          5 * time.Minute,
	}
}

// MirrorWorker copies the store into two spreadsheet tabs shaped like the
// CSV exports.
type MirrorWorker struct {
	source Source
	mirror sheets.Mirror
	config Config

	// One pass per tab at a time, so an older snapshot never lands after
	// a newer one.
	txMu     sync.Mutex
	ledgerMu sync.Mutex

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorWorker(source Source, mirror sheets.Mirror, config Config) *MirrorWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		config: config,
	}
}

// MirrorAll pushes both tabs concurrently.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.mirrorTransactions(gctx) })
	g.Go(func() error { return w.mirrorLedger(gctx) })
	return g.Wait()
}

// HandleChange re-mirrors the tab affected by msg. Unknown kinds refresh
// both tabs.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		log.FieldComponent, log.ComponentWorker,
		log.FieldKind, msg.Kind,
		log.FieldOperation, msg.Op,
		log.FieldRecordID, msg.ID,
		log.FieldCount, msg.Count)

	switch msg.Kind {
	case storage.KindTransaction:
		return w.mirrorTransactions(ctx)
	case storage.KindLedgerEntry:
		return w.mirrorLedger(ctx)
	default:
		return w.MirrorAll(ctx)
	}
}

func (w *MirrorWorker) mirrorTransactions(ctx context.Context) error {
	w.txMu.Lock()
	defer w.txMu.Unlock()

	ts, err := w.source.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	written, err := w.writeIfChanged(ctx, w.config.TransactionsSheet, csvio.TransactionTable(ts))
	if err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored transactions",
		"sheet", w.config.TransactionsSheet,
		"count", len(ts),
		"written", written)
	return nil
}

func (w *MirrorWorker) mirrorLedger(ctx context.Context) error {
	w.ledgerMu.Lock()
	defer w.ledgerMu.Unlock()

	es, err := w.source.ListLedgerEntries(ctx)
	if err != nil {
		return fmt.Errorf("list ledger entries: %w", err)
	}
	written, err := w.writeIfChanged(ctx, w.config.LedgerSheet, csvio.LedgerTable(es))
	if err != nil {
		return fmt.Errorf("mirror ledger: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored ledger",
		"sheet", w.config.LedgerSheet,
		"count", len(es),
		"written", written)
	return nil
}

// writeIfChanged skips the write when the tab already holds rows. A failed
// read falls through to the write.
func (w *MirrorWorker) writeIfChanged(ctx context.Context, sheet string, rows [][]string) (bool, error) {
	current, err := w.mirror.ReadTable(ctx, sheet)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read mirror tab, rewriting",
			log.FieldComponent, log.ComponentWorker,
			"sheet", sheet,
			log.FieldError, err)
	} else if current != nil && slices.EqualFunc(current, rows, slices.Equal[[]string]) {
		return false, nil
	}
	if err := w.mirror.WriteTable(ctx, sheet, rows); err != nil {
		return false, err
	}
	return true, nil
}

// Start begins the periodic mirror loop. Returns an error if already running.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror worker started", "interval", w.config.Interval)
	return nil
}

// Stop gracefully stops the loop and waits for the current pass.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Mirror worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the loop is currently running
func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *MirrorWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Mirror immediately on startup
	w.mirrorOnce(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mirrorOnce(ctx)
		}
	}
}

func (w *MirrorWorker) mirrorOnce(ctx context.Context) {
	if err := w.MirrorAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic mirror failed",
			log.FieldComponent, log.ComponentWorker,
			log.FieldOperation, log.OpSync,
			log.FieldError, err)
	}
}
