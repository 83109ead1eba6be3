package core

import "strings"

// TransactionFields is the raw text of a transaction as typed into a form or
// read from a CSV row.
type TransactionFields struct {
	Amount      string
	Date        string
	Description string
	Category    string
	Type        string
}

// LedgerEntryFields is the raw text of a ledger entry.
type LedgerEntryFields struct {
	Name        string
	Amount      string
	Description string
	Date        string
	Type        string
}

// ParseTransaction converts raw fields into a Transaction. The amount must be
// numeric, the date must be YYYY-MM-DD and the type income or expense; any
// failure is a *ParseError. Category is kept as given, possibly empty.
func ParseTransaction(f TransactionFields) (Transaction, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return Transaction{}, err
	}
	date, err := parseDate(f.Date)
	if err != nil {
		return Transaction{}, err
	}
	typ := TransType(strings.TrimSpace(f.Type))
	if !typ.Valid() {
		return Transaction{}, &ParseError{Field: "trans_type", Value: f.Type, Err: ErrInvalidTransType}
	}
	return Transaction{
		Amount:      amount,
		Date:        date,
		Description: f.Description,
		Category:    f.Category,
		Type:        typ,
	}, nil
}

// ParseLedgerEntry converts raw fields into a LedgerEntry with the same rules
// as ParseTransaction.
func ParseLedgerEntry(f LedgerEntryFields) (LedgerEntry, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return LedgerEntry{}, err
	}
	date, err := parseDate(f.Date)
	if err != nil {
		return LedgerEntry{}, err
	}
	typ := EntryType(strings.TrimSpace(f.Type))
	if !typ.Valid() {
		return LedgerEntry{}, &ParseError{Field: "entry_type", Value: f.Type, Err: ErrInvalidEntryType}
	}
	return LedgerEntry{
		Name:        f.Name,
		Amount:      amount,
		Description: f.Description,
		Date:        date,
		Type:        typ,
	}, nil
}

func parseDate(s string) (Date, error) {
	d := Date(strings.TrimSpace(s))
	if err := d.Validate(); err != nil {
		return "", &ParseError{Field: "date", Value: s, Err: err}
	}
	return d, nil
}
