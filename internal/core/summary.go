package core

// MonthTotals holds income and expense sums for one YYYY-MM month.
type MonthTotals struct {
	Month   string `json:"month"`
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
}

// PersonTotals aggregates the ledger for a single counterparty.
type PersonTotals struct {
	Name    string `json:"name"`
	Give    Amount `json:"to_give"`
	Receive Amount `json:"to_receive"`
}

// Net is what the counterparty owes the user once both directions cancel.
func (p PersonTotals) Net() Amount {
	return p.Receive.Minus(p.Give)
}

// LedgerReport is the per-person breakdown plus overall totals.
type LedgerReport struct {
	People         []PersonTotals `json:"people"`
	TotalToGive    Amount         `json:"total_to_give"`
	TotalToReceive Amount         `json:"total_to_receive"`
	NetBalance     Amount         `json:"net_balance"`
}

// Totals summarizes a set of transactions.
type Totals struct {
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
	Net     Amount `json:"net"`
}
