package csvio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{Amount: core.AmountFromInt(100), Date: "2024-01-05", Description: "Salary", Category: "Salary", Type: core.Income},
		{Amount: core.AmountFromFloat(40.5), Date: "2024-01-10", Description: "Groceries, weekly", Category: "Food", Type: core.Expense},
		{Amount: core.AmountFromInt(12), Date: "2024-02-01", Description: `Pizza "margherita"`, Category: "Food", Type: core.Expense},
	}
}

func TestExportTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportTransactions(&buf, sampleTransactions()))

	want := strings.Join([]string{
		"Amount,Date,Description,Category,Type",
		"100,2024-01-05,Salary,Salary,income",
		`40.5,2024-01-10,"Groceries, weekly",Food,expense`,
		`12,2024-02-01,"Pizza ""margherita""",Food,expense`,
		"",
		"Total Income,100",
		"Total Expense,52.5",
		"Net Balance,47.5",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestExportLedger(t *testing.T) {
	es := []core.LedgerEntry{
		{Name: "Alice", Amount: core.AmountFromInt(30), Description: "dinner", Date: "2024-01-01", Type: core.ToGive},
		{Name: "Bob", Amount: core.AmountFromInt(20), Description: "taxi", Date: "2024-01-02", Type: core.ToReceive},
	}
	var buf bytes.Buffer
	require.NoError(t, ExportLedger(&buf, es))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Name,Amount,Description,Date,Type", lines[0])
	assert.Equal(t, "Alice,30,dinner,2024-01-01,to_give", lines[1])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "Total To Give,30", lines[4])
	assert.Equal(t, "Total To Receive,20", lines[5])
	assert.Equal(t, "Net Balance,-10", lines[6])
}

func TestTransactionCSVRoundTrip(t *testing.T) {
	in := sampleTransactions()
	var buf bytes.Buffer
	require.NoError(t, ExportTransactions(&buf, in))

	out, err := ImportTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.True(t, in[i].Equal(out[i]), "row %d: %+v != %+v", i, in[i], out[i])
	}
}

func TestTransactionCSVRoundTripKeepsCategoryPadding(t *testing.T) {
	in := []core.Transaction{
		{Amount: core.AmountFromInt(7), Date: "2024-03-01", Description: "lunch", Category: " Food ", Type: core.Expense},
	}
	var buf bytes.Buffer
	require.NoError(t, ExportTransactions(&buf, in))

	out, err := ImportTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, " Food ", out[0].Category)
	assert.True(t, in[0].Equal(out[0]))
}

func TestLedgerCSVRoundTripViaFile(t *testing.T) {
	in := []core.LedgerEntry{
		{Name: "Alice", Amount: core.AmountFromInt(30), Description: "", Date: "2024-01-01", Type: core.ToGive},
		{Name: "Total To Give", Amount: core.AmountFromInt(1), Description: "tricky name", Date: "2024-01-03", Type: core.ToReceive},
	}
	path := filepath.Join(t.TempDir(), "exports", "ledger.csv")
	require.NoError(t, ExportLedgerFile(path, in))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, err := ImportLedger(f)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.True(t, in[i].Equal(out[i]))
	}
}

func TestImportSkipsMalformedRows(t *testing.T) {
	doc := strings.Join([]string{
		"Type,Amount,Date,Description,Category,Notes",
		"income,100,2024-01-05,Salary,Salary,",
		"expense,not-a-number,2024-01-06,Broken,Food,",
		"expense,20,2024-01-07,Coffee,Food,x",
		"expense,5,07/01/2024,Bad date,Food,",
		"expense,5",
		"",
		"Total Income,100",
	}, "\n")

	out, err := ImportTransactions(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Salary", out[0].Description)
	assert.Equal(t, core.Expense, out[1].Type)
	assert.Equal(t, "20", out[1].Amount.String())
}

func TestImportMissingHeader(t *testing.T) {
	_, err := ImportTransactions(strings.NewReader("amount,date,description,category,type\n1,2024-01-01,a,b,income\n"))
	var pe *core.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Amount", pe.Value)

	_, err = ImportLedger(strings.NewReader(""))
	assert.True(t, errors.Is(err, core.ErrParse))
}

func TestTransactionTableMatchesExport(t *testing.T) {
	rows := TransactionTable(nil)
	require.Len(t, rows, 5)
	assert.Equal(t, TransactionHeader, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, []string{"Net Balance", "0"}, rows[4])
}
