package report

import (
	"sort"

	"budget/internal/core"
)

// MonthlyIncomeExpense groups transactions by YYYY-MM and sums income and
// expense separately, months ascending. Transactions of an unknown type add
// to neither total and do not by themselves create a month.
func MonthlyIncomeExpense(ts []core.Transaction) []core.MonthTotals {
	byMonth := make(map[string]*core.MonthTotals)
	for _, t := range ts {
		if !t.Type.Valid() {
			continue
		}
		key := t.Date.Month()
		m, ok := byMonth[key]
		if !ok {
			m = &core.MonthTotals{Month: key}
			byMonth[key] = m
		}
		switch t.Type {
		case core.Income:
			m.Income = m.Income.Plus(t.Amount)
		case core.Expense:
			m.Expense = m.Expense.Plus(t.Amount)
		}
	}

	out := make([]core.MonthTotals, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// PerPersonLedger sums give and receive amounts per counterparty, names
// ascending, with global totals and net balance (receive minus give).
func PerPersonLedger(es []core.LedgerEntry) core.LedgerReport {
	byName := make(map[string]*core.PersonTotals)
	var rep core.LedgerReport
	for _, e := range es {
		if !e.Type.Valid() {
			continue
		}
		p, ok := byName[e.Name]
		if !ok {
			p = &core.PersonTotals{Name: e.Name}
			byName[e.Name] = p
		}
		switch e.Type {
		case core.ToGive:
			p.Give = p.Give.Plus(e.Amount)
			rep.TotalToGive = rep.TotalToGive.Plus(e.Amount)
		case core.ToReceive:
			p.Receive = p.Receive.Plus(e.Amount)
			rep.TotalToReceive = rep.TotalToReceive.Plus(e.Amount)
		}
	}

	rep.People = make([]core.PersonTotals, 0, len(byName))
	for _, p := range byName {
		rep.People = append(rep.People, *p)
	}
	sort.Slice(rep.People, func(i, j int) bool { return rep.People[i].Name < rep.People[j].Name })
	rep.NetBalance = rep.TotalToReceive.Minus(rep.TotalToGive)
	return rep
}

// TransactionTotals sums income and expense over ts. Net is income minus
// expense.
func TransactionTotals(ts []core.Transaction) core.Totals {
	var tot core.Totals
	for _, t := range ts {
		switch t.Type {
		case core.Income:
			tot.Income = tot.Income.Plus(t.Amount)
		case core.Expense:
			tot.Expense = tot.Expense.Plus(t.Amount)
		}
	}
	tot.Net = tot.Income.Minus(tot.Expense)
	return tot
}
