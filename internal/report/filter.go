// Package report derives filtered views and aggregate reports from budget
// records. Functions here never mutate their inputs.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// AllCategories disables the category clause, as does an empty Category.
const AllCategories = "All"

// TransactionFilter is a conjunction of optional clauses. A zero value
// matches every transaction.
type TransactionFilter struct {
	Category    string
	DateFrom    core.Date // inclusive, lexical
	DateTo      core.Date // inclusive, lexical
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Description string // case-insensitive substring
}

// Match reports whether t satisfies every active clause.
func (f TransactionFilter) Match(t core.Transaction) bool {
	if f.Category != "" && f.Category != AllCategories && t.Category != f.Category {
		return false
	}
	if f.DateFrom != "" && t.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && t.Date > f.DateTo {
		return false
	}
	if f.MinAmount != nil && t.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && t.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Description != "" &&
		!strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Description)) {
		return false
	}
	return true
}

// FilterTransactions returns the transactions matching f in source order.
func FilterTransactions(all []core.Transaction, f TransactionFilter) []core.Transaction {
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories in use, sorted.
func Categories(ts []core.Transaction) []string {
	seen := make(map[string]struct{}, len(ts))
	out := make([]string, 0)
	for _, t := range ts {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}
