// Package csvio reads and writes the CSV shapes used for transaction and
// ledger export and import.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"budget/internal/core"
	"budget/internal/report"
)

var (
	TransactionHeader = []string{"Amount", "Date", "Description", "Category", "Type"}
	LedgerHeader      = []string{"Name", "Amount", "Description", "Date", "Type"}
)

// TransactionTable returns the exported rows for ts: header, one row per
// transaction, a blank row and the income, expense and net summary computed
// over exactly ts.
func TransactionTable(ts []core.Transaction) [][]string {
	rows := make([][]string, 0, len(ts)+5)
	rows = append(rows, TransactionHeader)
	for _, t := range ts {
		rows = append(rows, []string{
			t.Amount.String(),
			t.Date.String(),
			t.Description,
			t.Category,
			t.Type.String(),
		})
	}
	tot := report.TransactionTotals(ts)
	return append(rows,
		[]string{},
		[]string{"Total Income", tot.Income.String()},
		[]string{"Total Expense", tot.Expense.String()},
		[]string{"Net Balance", tot.Net.String()},
	)
}

// LedgerTable is the ledger counterpart of TransactionTable. Net Balance is
// receive minus give.
func LedgerTable(es []core.LedgerEntry) [][]string {
	rows := make([][]string, 0, len(es)+5)
	rows = append(rows, LedgerHeader)
	for _, e := range es {
		rows = append(rows, []string{
			e.Name,
			e.Amount.String(),
			e.Description,
			e.Date.String(),
			e.Type.String(),
		})
	}
	rep := report.PerPersonLedger(es)
	return append(rows,
		[]string{},
		[]string{"Total To Give", rep.TotalToGive.String()},
		[]string{"Total To Receive", rep.TotalToReceive.String()},
		[]string{"Net Balance", rep.NetBalance.String()},
	)
}

// ExportTransactions writes TransactionTable(ts) to w as CSV.
func ExportTransactions(w io.Writer, ts []core.Transaction) error {
	return writeAll(w, TransactionTable(ts))
}

// ExportLedger writes LedgerTable(es) to w as CSV.
func ExportLedger(w io.Writer, es []core.LedgerEntry) error {
	return writeAll(w, LedgerTable(es))
}

// ExportTransactionsFile writes the transaction export to path, replacing any
// existing file.
func ExportTransactionsFile(path string, ts []core.Transaction) error {
	return writeFile(path, func(w io.Writer) error { return ExportTransactions(w, ts) })
}

// ExportLedgerFile writes the ledger export to path, replacing any existing
// file.
func ExportLedgerFile(path string, es []core.LedgerEntry) error {
	return writeFile(path, func(w io.Writer) error { return ExportLedger(w, es) })
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	return write(f)
}
