package storage

import (
	"context"
	"database/sql"

	"budget/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, amount, date, description, category, trans_type
FROM transactions
ORDER BY seq
`

func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Transaction{}
	for rows.Next() {
		var i core.Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Amount.Decimal,
			&i.Date,
			&i.Description,
			&i.Category,
			&i.Type,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, amount, date, description, category, trans_type)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		t.ID,
		t.Amount.String(),
		string(t.Date),
		t.Description,
		t.Category,
		string(t.Type),
	)
	return err
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET amount = ?, date = ?, description = ?, category = ?, trans_type = ?
WHERE id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		t.Amount.String(),
		string(t.Date),
		t.Description,
		t.Category,
		string(t.Type),
		t.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listLedgerEntries = `-- name: ListLedgerEntries :many
SELECT id, name, amount, description, date, entry_type
FROM ledger_entries
ORDER BY seq
`

func (q *Queries) ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := q.db.QueryContext(ctx, listLedgerEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.LedgerEntry{}
	for rows.Next() {
		var i core.LedgerEntry
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Amount.Decimal,
			&i.Description,
			&i.Date,
			&i.Type,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createLedgerEntry = `-- name: CreateLedgerEntry :exec
INSERT INTO ledger_entries (id, name, amount, description, date, entry_type)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) error {
	_, err := q.db.ExecContext(ctx, createLedgerEntry,
		e.ID,
		e.Name,
		e.Amount.String(),
		e.Description,
		string(e.Date),
		string(e.Type),
	)
	return err
}

const updateLedgerEntry = `-- name: UpdateLedgerEntry :execrows
UPDATE ledger_entries
SET name = ?, amount = ?, description = ?, date = ?, entry_type = ?
WHERE id = ?
`

func (q *Queries) UpdateLedgerEntry(ctx context.Context, e core.LedgerEntry) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateLedgerEntry,
		e.Name,
		e.Amount.String(),
		e.Description,
		string(e.Date),
		string(e.Type),
		e.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteLedgerEntry = `-- name: DeleteLedgerEntry :execrows
DELETE FROM ledger_entries WHERE id = ?
`

func (q *Queries) DeleteLedgerEntry(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLedgerEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
