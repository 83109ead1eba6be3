package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"budget/internal/core"
	"budget/internal/log"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"parse error", &core.ParseError{Field: "amount", Value: "x", Err: core.ErrInvalidAmount}, http.StatusUnprocessableEntity},
		{"invalid date", core.ErrInvalidDate, http.StatusUnprocessableEntity},
		{"wrapped trans type", fmt.Errorf("create: %w", core.ErrInvalidTransType), http.StatusUnprocessableEntity},
		{"invalid entry type", core.ErrInvalidEntryType, http.StatusUnprocessableEntity},
		{"not found", &core.NotFoundError{Kind: "transaction", ID: "abc"}, http.StatusNotFound},
		{"bad request", fmt.Errorf("%w: eof", errBadRequest), http.StatusBadRequest},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, log.OpList, errors.New("open /secret/path: permission denied"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error = %q", body.Error)
	}
	if len(c.Errors) != 1 {
		t.Errorf("expected error recorded on context, got %d", len(c.Errors))
	}
	if !c.IsAborted() {
		t.Error("expected context to be aborted")
	}
}

func TestRespondErrorShowsClientErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	err := &core.NotFoundError{Kind: "ledger_entry", ID: "42"}
	respondError(c, log.OpDelete, err)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != err.Error() {
		t.Errorf("error = %q, want %q", body.Error, err.Error())
	}
}

func TestRespondCSV(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondCSV(c, "ledger.csv", bytes.NewBufferString("Name,Amount\n"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="ledger.csv"` {
		t.Errorf("content disposition = %q", got)
	}
	if w.Body.String() != "Name,Amount\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestNonNil(t *testing.T) {
	var s []string
	b, _ := json.Marshal(nonNil(s))
	if string(b) != "[]" {
		t.Errorf("got %s, want []", b)
	}
	if got := nonNil([]int{1}); len(got) != 1 {
		t.Errorf("got %v", got)
	}
}
