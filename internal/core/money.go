// Package core provides the budget domain: records, amounts, errors and the
// keyword categorizer.
//
// This file contains the Amount type and the parsing of amounts from user or
// CSV text.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed decimal quantity with no currency attached.
//
// It serializes to JSON as a bare number so that stored documents keep the
// numeric form ({"amount": 12.5}), and accepts both numbers and quoted
// strings when decoding.
type Amount struct {
	decimal.Decimal
}

var ErrInvalidAmount = errors.New("invalid amount")

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromInt returns an Amount equal to v.
func AmountFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

// AmountFromFloat returns an Amount equal to v.
func AmountFromFloat(v float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(v)}
}

// ParseAmount parses a decimal string such as "12", "-3.50" or "+1e2".
//
// Surrounding whitespace is ignored. An empty string, a non-numeric string
// or a second decimal point yields a *ParseError wrapping ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount(" -5 ")  -> -5, nil
//	ParseAmount("abc")   -> error
func ParseAmount(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}, &ParseError{Field: "amount", Value: s, Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, &ParseError{Field: "amount", Value: s, Err: ErrInvalidAmount}
	}
	return Amount{Decimal: d}, nil
}

// MarshalJSON writes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Plus returns a + b.
func (a Amount) Plus(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

// Minus returns a - b.
func (a Amount) Minus(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Sub(b.Decimal)}
}
