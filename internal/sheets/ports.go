package sheets

import (
	"context"
)

// Ports for the spreadsheet mirror. A table is a list of rows of cell text,
// shaped like the CSV export.
type (
	TableWriter interface {
		// WriteTable replaces the whole content of sheet with rows.
		WriteTable(ctx context.Context, sheet string, rows [][]string) error
	}

	TableReader interface {
		ReadTable(ctx context.Context, sheet string) ([][]string, error)
	}

	Mirror interface {
		TableWriter
		TableReader
	}
)
