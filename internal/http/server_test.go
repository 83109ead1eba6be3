package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"budget/internal/services"
	"budget/internal/storage/jsonfile"
)

type ServerTestSuite struct {
	suite.Suite
	server *Server
	svc    *services.BudgetService
	ready  error
}

func (s *ServerTestSuite) SetupTest() {
	repo, err := jsonfile.Open(filepath.Join(s.T().TempDir(), "data.json"))
	s.Require().NoError(err)

	s.svc = services.NewBudgetService(repo, nil, nil, 0, nil)
	s.ready = nil
	s.server, err = NewServer(ServerConfig{
		Addr:           ":0",
		AllowedOrigins: []string{"https://budget.example"},
		Ready:          func(context.Context) error { return s.ready },
	}, s.svc, nil)
	s.Require().NoError(err)
}

func (s *ServerTestSuite) TearDownTest() {
	s.NoError(s.svc.Close())
}

func (s *ServerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)
	return w
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (s *ServerTestSuite) createTransaction(body string) map[string]any {
	w := s.do(http.MethodPost, "/api/v1/transactions", body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var out map[string]any
	s.decode(w, &out)
	return out
}

func (s *ServerTestSuite) TestHealthAndReady() {
	w := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", w.Body.String())

	w = s.do(http.MethodGet, "/readyz", "")
	s.Equal(http.StatusOK, w.Code)

	s.ready = errors.New("store unavailable")
	w = s.do(http.MethodGet, "/readyz", "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *ServerTestSuite) TestMiddlewareHeaders() {
	w := s.do(http.MethodGet, "/healthz", "")

	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	s.NoError(err, "response should carry a generated request ID")
	s.Equal("nosniff", w.Header().Get("X-Content-Type-Options"))
	s.Equal("DENY", w.Header().Get("X-Frame-Options"))
	s.Empty(w.Header().Get("Strict-Transport-Security"))

	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set("X-Request-ID", id)
	w = httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)
	s.Equal(id, w.Header().Get("X-Request-ID"))
}

func (s *ServerTestSuite) TestCORS() {
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil)
	r.Header.Set("Origin", "https://budget.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("https://budget.example", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *ServerTestSuite) TestSuspiciousRequestIsBlocked() {
	w := s.do(http.MethodGet, "/api/v1/.env", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ServerTestSuite) TestTransactionLifecycle() {
	created := s.createTransaction(`{"amount": "42.50", "date": "2024-03-10", "description": "Uber ride", "trans_type": "expense"}`)
	s.Equal("Transport", created["category"])
	s.Equal(42.5, created["amount"])
	id, _ := created["id"].(string)
	s.Require().NotEmpty(id)

	w := s.do(http.MethodPut, "/api/v1/transactions/"+id,
		`{"amount": 40, "date": "2024-03-11", "description": "Uber ride", "category": "Travel", "trans_type": "expense"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated map[string]any
	s.decode(w, &updated)
	s.Equal("Travel", updated["category"])
	s.Equal(id, updated["id"])

	w = s.do(http.MethodGet, "/api/v1/transactions", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list []map[string]any
	s.decode(w, &list)
	s.Len(list, 1)

	w = s.do(http.MethodDelete, "/api/v1/transactions/"+id, "")
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/transactions/"+id, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/transactions", "")
	s.Equal("[]", strings.TrimSpace(w.Body.String()))
}

func (s *ServerTestSuite) TestCreateTransactionErrors() {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"amount":`, http.StatusBadRequest},
		{"missing type", `{"amount": 1}`, http.StatusUnprocessableEntity},
		{"bad amount", `{"amount": "1.2.3", "trans_type": "income"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"amount": 1, "date": "2024-02-30", "trans_type": "income"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"amount": 1, "trans_type": "gift"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/api/v1/transactions", tt.body)
			s.Equal(tt.want, w.Code, w.Body.String())
			var body errorResponse
			s.decode(w, &body)
			s.NotEmpty(body.Error)
		})
	}
}

func (s *ServerTestSuite) TestUpdateUnknownTransaction() {
	w := s.do(http.MethodPut, "/api/v1/transactions/nope", `{"amount": 1, "trans_type": "income"}`)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ServerTestSuite) TestReportsAndFilters() {
	s.createTransaction(`{"amount": 1000, "date": "2024-01-31", "description": "Salary", "category": "Salary", "trans_type": "income"}`)
	s.createTransaction(`{"amount": 30, "date": "2024-01-15", "description": "Pizza", "category": "Food", "trans_type": "expense"}`)
	s.createTransaction(`{"amount": 20, "date": "2024-02-02", "description": "Pizza again", "category": "Food", "trans_type": "expense"}`)

	w := s.do(http.MethodGet, "/api/v1/transactions?category=Food&min=25", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list []map[string]any
	s.decode(w, &list)
	s.Require().Len(list, 1)
	s.Equal("Pizza", list[0]["description"])

	w = s.do(http.MethodGet, "/api/v1/transactions?from=bad", "")
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/api/v1/transactions/categories", "")
	var cats []string
	s.decode(w, &cats)
	s.ElementsMatch([]string{"Food", "Salary"}, cats)

	w = s.do(http.MethodGet, "/api/v1/transactions/report/monthly", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var months []map[string]any
	s.decode(w, &months)
	s.Require().Len(months, 2)
	s.Equal("2024-01", months[0]["month"])
	s.Equal(1000.0, months[0]["income"])
	s.Equal(30.0, months[0]["expense"])

	w = s.do(http.MethodGet, "/api/v1/transactions/totals?q=pizza", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var totals map[string]any
	s.decode(w, &totals)
	s.Equal(0.0, totals["income"])
	s.Equal(50.0, totals["expense"])
}

func (s *ServerTestSuite) TestTransactionsExportImportRoundTrip() {
	s.createTransaction(`{"amount": 12, "date": "2024-04-01", "description": "Coffee", "category": "Food", "trans_type": "expense"}`)

	w := s.do(http.MethodGet, "/api/v1/transactions/export.csv", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Disposition"), "transactions.csv")
	csvText := w.Body.String()
	s.True(strings.HasPrefix(csvText, "Amount,Date,Description,Category,Type"), csvText)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/import", strings.NewReader(csvText))
	r.Header.Set("Content-Type", "text/csv")
	w = httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var imported importResponse
	s.decode(w, &imported)
	s.Equal(1, imported.Imported)

	w = s.do(http.MethodGet, "/api/v1/transactions", "")
	var list []map[string]any
	s.decode(w, &list)
	s.Len(list, 2)
}

func (s *ServerTestSuite) TestImportRejectsMissingHeader() {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/import", strings.NewReader("Foo,Bar\n1,2\n"))
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *ServerTestSuite) TestLedgerLifecycle() {
	w := s.do(http.MethodPost, "/api/v1/ledger", `{"name": "Alice", "amount": 10, "date": "2024-05-01", "entry_type": "to_give"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry map[string]any
	s.decode(w, &entry)
	id, _ := entry["id"].(string)
	s.Require().NotEmpty(id)

	w = s.do(http.MethodPost, "/api/v1/ledger", `{"name": "Alice", "amount": "25", "date": "2024-05-02", "entry_type": "to_receive"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/ledger", `{"amount": 5, "entry_type": "to_give"}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/api/v1/ledger/report", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var rep map[string]any
	s.decode(w, &rep)
	s.Equal(10.0, rep["total_to_give"])
	s.Equal(25.0, rep["total_to_receive"])
	s.Equal(15.0, rep["net_balance"])

	w = s.do(http.MethodPut, "/api/v1/ledger/"+id, `{"name": "Bob", "amount": 10, "date": "2024-05-01", "entry_type": "to_give"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, "/api/v1/ledger/"+id, "")
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/ledger", "")
	var list []map[string]any
	s.decode(w, &list)
	s.Len(list, 1)
}

func (s *ServerTestSuite) TestLedgerReportEmpty() {
	w := s.do(http.MethodGet, "/api/v1/ledger/report", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var rep map[string]any
	s.decode(w, &rep)
	s.Equal([]any{}, rep["people"])
}

func (s *ServerTestSuite) TestLedgerMultipartImport() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "ledger.csv")
	s.Require().NoError(err)
	_, err = part.Write([]byte("Name,Amount,Description,Date,Type\nCarol,7,lunch,2024-06-01,to_receive\nbad,row\n"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/import", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, r)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var imported importResponse
	s.decode(w, &imported)
	s.Equal(1, imported.Imported)

	w = s.do(http.MethodGet, "/api/v1/ledger/export.csv", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Carol,7,lunch,2024-06-01,to_receive")
}

func (s *ServerTestSuite) TestCategorize() {
	w := s.do(http.MethodGet, "/api/v1/categorize?description=Uber+to+airport", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var out categorizeResponse
	s.decode(w, &out)
	s.Equal("Transport", out.Category)
	s.Equal("Uber to airport", out.Description)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestRateLimit(t *testing.T) {
	repo, err := jsonfile.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	svc := services.NewBudgetService(repo, nil, nil, 0, nil)
	defer svc.Close()

	srv, err := NewServer(ServerConfig{RateLimit: "2-M"}, svc, nil)
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewServerRejectsBadRate(t *testing.T) {
	repo, err := jsonfile.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	svc := services.NewBudgetService(repo, nil, nil, 0, nil)
	defer svc.Close()

	_, err = NewServer(ServerConfig{RateLimit: "lots"}, svc, nil)
	assert.Error(t, err)
}

func TestShutdownIsIdempotent(t *testing.T) {
	repo, err := jsonfile.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	svc := services.NewBudgetService(repo, nil, nil, 0, nil)
	defer svc.Close()

	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, svc, nil)
	require.NoError(t, err)
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, srv.Shutdown(context.Background()))
}
