// Package http exposes the budget service as a JSON API.
//
// This file parses request bodies and query strings into domain values.
// Text that reaches core parsing yields *core.ParseError so the response
// layer can report it as 422.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/report"
)

// maxImportBytes bounds CSV uploads.
const maxImportBytes = 10 << 20

var errBadRequest = errors.New("bad request")

// transactionRequest is the body of POST and PUT /transactions.
type transactionRequest struct {
	Amount      json.RawMessage `json:"amount" binding:"required"`
	Date        string          `json:"date" binding:"omitempty,isodate"`
	Description string          `json:"description" binding:"max=500"`
	Category    string          `json:"category" binding:"max=100"`
	Type        string          `json:"trans_type" binding:"required,trans_type"`
}

// ledgerEntryRequest is the body of POST and PUT /ledger.
type ledgerEntryRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Amount      json.RawMessage `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
	Date        string          `json:"date" binding:"omitempty,isodate"`
	Type        string          `json:"entry_type" binding:"required,entry_type"`
}

// toTransaction parses the request. A missing date means today.
func (r transactionRequest) toTransaction() (core.Transaction, error) {
	return core.ParseTransaction(core.TransactionFields{
		Amount:      rawAmountText(r.Amount),
		Date:        dateOrToday(r.Date),
		Description: sanitizeInput(r.Description),
		Category:    sanitizeInput(r.Category),
		Type:        r.Type,
	})
}

func (r ledgerEntryRequest) toLedgerEntry() (core.LedgerEntry, error) {
	return core.ParseLedgerEntry(core.LedgerEntryFields{
		Name:        sanitizeInput(r.Name),
		Amount:      rawAmountText(r.Amount),
		Description: sanitizeInput(r.Description),
		Date:        dateOrToday(r.Date),
		Type:        r.Type,
	})
}

// bindJSON decodes the body into dst. Syntax and type errors are wrapped in
// errBadRequest; validation failures are returned as they are.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if isValidationError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// rawAmountText accepts an amount sent as a JSON number or a JSON string.
func rawAmountText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return text
}

func dateOrToday(s string) string {
	if strings.TrimSpace(s) == "" {
		return core.Today().String()
	}
	return s
}

// ParseFilter reads the transaction filter from the query string:
// category, from, to, min, max and q. Absent or blank parameters disable
// their clause.
func ParseFilter(query url.Values) (report.TransactionFilter, error) {
	f := report.TransactionFilter{
		Category:    strings.TrimSpace(query.Get("category")),
		Description: strings.TrimSpace(query.Get("q")),
	}

	for _, p := range []struct {
		name string
		dst  *core.Date
	}{
		{"from", &f.DateFrom},
		{"to", &f.DateTo},
	} {
		v := strings.TrimSpace(query.Get(p.name))
		if v == "" {
			continue
		}
		d := core.Date(v)
		if err := d.Validate(); err != nil {
			return report.TransactionFilter{}, &core.ParseError{Field: p.name, Value: v, Err: err}
		}
		*p.dst = d
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min", &f.MinAmount},
		{"max", &f.MaxAmount},
	} {
		v := strings.TrimSpace(query.Get(p.name))
		if v == "" {
			continue
		}
		a, err := core.ParseAmount(v)
		if err != nil {
			return report.TransactionFilter{}, &core.ParseError{Field: p.name, Value: v, Err: core.ErrInvalidAmount}
		}
		d := a.Decimal
		*p.dst = &d
	}

	return f, nil
}

// importBody returns the CSV payload of an import request: either the
// "file" part of a multipart form or the raw body.
func importBody(c *gin.Context) (io.ReadCloser, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("%w: missing file part: %v", errBadRequest, err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		return f, nil
	}

	return c.Request.Body, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
