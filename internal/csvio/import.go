package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"budget/internal/core"
)

var errMissingHeader = errors.New("missing required column")

// ImportTransactions parses transactions from CSV with a header row. Columns
// are located by exact, case-sensitive name and may appear in any order.
// Rows that fail to parse, including blank and summary rows, are skipped.
// A header lacking a required column is a *core.ParseError.
func ImportTransactions(r io.Reader) ([]core.Transaction, error) {
	var out []core.Transaction
	err := readRows(r, TransactionHeader, func(get func(string) (string, bool)) {
		f, ok := fields(get, TransactionHeader)
		if !ok {
			return
		}
		t, err := core.ParseTransaction(core.TransactionFields{
			Amount:      f["Amount"],
			Date:        f["Date"],
			Description: f["Description"],
			Category:    f["Category"],
			Type:        f["Type"],
		})
		if err != nil {
			return
		}
		out = append(out, t)
	})
	return out, err
}

// ImportLedger parses ledger entries with the same rules as
// ImportTransactions.
func ImportLedger(r io.Reader) ([]core.LedgerEntry, error) {
	var out []core.LedgerEntry
	err := readRows(r, LedgerHeader, func(get func(string) (string, bool)) {
		f, ok := fields(get, LedgerHeader)
		if !ok {
			return
		}
		e, err := core.ParseLedgerEntry(core.LedgerEntryFields{
			Name:        f["Name"],
			Amount:      f["Amount"],
			Description: f["Description"],
			Date:        f["Date"],
			Type:        f["Type"],
		})
		if err != nil {
			return
		}
		out = append(out, e)
	})
	return out, err
}

func fields(get func(string) (string, bool), names []string) (map[string]string, bool) {
	m := make(map[string]string, len(names))
	for _, n := range names {
		v, ok := get(n)
		if !ok {
			return nil, false
		}
		m[n] = v
	}
	return m, true
}

// readRows reads the header, checks the required columns and calls row for
// every following record with a lookup by column name. Malformed CSV lines
// are skipped like unparseable rows.
func readRows(r io.Reader, required []string, row func(get func(string) (string, bool))) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &core.ParseError{Field: "header", Value: "", Err: errMissingHeader}
		}
		return fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return &core.ParseError{Field: "header", Value: name, Err: errMissingHeader}
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return fmt.Errorf("read csv: %w", err)
		}
		row(func(name string) (string, bool) {
			i := index[name]
			if i >= len(rec) {
				return "", false
			}
			return rec[i], true
		})
	}
}
