package core

import (
	"errors"
	"time"
)

const (
	Income  TransType = "income"
	Expense TransType = "expense"

	ToGive    EntryType = "to_give"
	ToReceive EntryType = "to_receive"
)

// DateLayout is the only accepted textual date form. Lexical ordering of
// dates in this layout matches chronological ordering.
const DateLayout = "2006-01-02"

type (
	TransType string
	EntryType string

	// Date is a calendar date kept in its ISO YYYY-MM-DD text form.
	Date string

	Transaction struct {
		ID          string
		Amount      Amount
		Date        Date
		Description string
		Category    string // open label, auto-tagged or free text
		Type        TransType
	}

	LedgerEntry struct {
		ID          string
		Name        string // counterparty, matched by exact string equality
		Amount      Amount
		Description string
		Date        Date
		Type        EntryType
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTransType = errors.New("invalid transaction type, expected income or expense")
	ErrInvalidEntryType = errors.New("invalid entry type, expected to_give or to_receive")
)

// Valid reports whether t is one of the two known transaction types.
func (t TransType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (t TransType) String() string {
	return string(t)
}

// Valid reports whether t is one of the two known ledger entry types.
func (t EntryType) Valid() bool {
	switch t {
	case ToGive, ToReceive:
		return true
	default:
		return false
	}
}

func (t EntryType) String() string {
	return string(t)
}

// NewDate creates a Date from year, month, day
func NewDate(year, month, day int) Date {
	return DateOf(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// DateOf formats t as a Date.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the current local date.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) Validate() error {
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the YYYY-MM prefix used to group by month. Shorter values are
// returned whole.
func (d Date) Month() string {
	r := []rune(string(d))
	if len(r) < 7 {
		return string(d)
	}
	return string(r[:7])
}

func (d Date) String() string {
	return string(d)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidTransType
	}
	return nil
}

// Equal compares all fields, amounts by numeric value.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Amount.Equal(o.Amount.Decimal) &&
		t.Date == o.Date &&
		t.Description == o.Description &&
		t.Category == o.Category &&
		t.Type == o.Type
}

func (e LedgerEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Type.Valid() {
		return ErrInvalidEntryType
	}
	return nil
}

// Equal compares all fields, amounts by numeric value.
func (e LedgerEntry) Equal(o LedgerEntry) bool {
	return e.ID == o.ID &&
		e.Name == o.Name &&
		e.Amount.Equal(o.Amount.Decimal) &&
		e.Description == o.Description &&
		e.Date == o.Date &&
		e.Type == o.Type
}
