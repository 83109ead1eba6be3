package http

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/report"
)

// BudgetService is what the handlers need from the service layer.
// *services.BudgetService implements it.
type BudgetService interface {
	ListTransactions(ctx context.Context, f report.TransactionFilter) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ImportTransactions(ctx context.Context, r io.Reader) (int, error)
	ExportTransactions(ctx context.Context, w io.Writer, f report.TransactionFilter) error
	Categories(ctx context.Context) ([]string, error)
	MonthlyReport(ctx context.Context, f report.TransactionFilter) ([]core.MonthTotals, error)
	Totals(ctx context.Context, f report.TransactionFilter) (core.Totals, error)

	ListLedgerEntries(ctx context.Context) ([]core.LedgerEntry, error)
	CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error)
	UpdateLedgerEntry(ctx context.Context, id string, e core.LedgerEntry) (core.LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, id string) error
	ImportLedger(ctx context.Context, r io.Reader) (int, error)
	ExportLedger(ctx context.Context, w io.Writer) error
	LedgerReport(ctx context.Context) (core.LedgerReport, error)

	Categorize(description string) string
}

type handlers struct {
	svc BudgetService
}

func registerRoutes(rg *gin.RouterGroup, svc BudgetService) {
	h := &handlers{svc: svc}

	tx := rg.Group("/transactions")
	{
		tx.GET("", h.listTransactions)
		tx.POST("", h.createTransaction)
		tx.PUT("/:id", h.updateTransaction)
		tx.DELETE("/:id", h.deleteTransaction)
		tx.GET("/categories", h.listCategories)
		tx.GET("/report/monthly", h.monthlyReport)
		tx.GET("/totals", h.totals)
		tx.GET("/export.csv", h.exportTransactions)
		tx.POST("/import", h.importTransactions)
	}

	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.listLedger)
		ledger.POST("", h.createLedgerEntry)
		ledger.PUT("/:id", h.updateLedgerEntry)
		ledger.DELETE("/:id", h.deleteLedgerEntry)
		ledger.GET("/report", h.ledgerReport)
		ledger.GET("/export.csv", h.exportLedger)
		ledger.POST("/import", h.importLedger)
	}

	rg.GET("/categorize", h.categorize)
}

func (h *handlers) listTransactions(c *gin.Context) {
	f, err := ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	ts, err := h.svc.ListTransactions(c.Request.Context(), f)
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(ts))
}

func (h *handlers) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, log.OpCreate, err)
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		respondError(c, log.OpCreate, err)
		return
	}
	saved, err := h.svc.CreateTransaction(c.Request.Context(), t)
	if err != nil {
		respondError(c, log.OpCreate, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *handlers) updateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, log.OpUpdate, err)
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		respondError(c, log.OpUpdate, err)
		return
	}
	saved, err := h.svc.UpdateTransaction(c.Request.Context(), c.Param("id"), t)
	if err != nil {
		respondError(c, log.OpUpdate, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) deleteTransaction(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, log.OpDelete, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(cats))
}

func (h *handlers) monthlyReport(c *gin.Context) {
	f, err := ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	months, err := h.svc.MonthlyReport(c.Request.Context(), f)
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(months))
}

func (h *handlers) totals(c *gin.Context) {
	f, err := ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	totals, err := h.svc.Totals(c.Request.Context(), f)
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *handlers) exportTransactions(c *gin.Context) {
	f, err := ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, log.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportTransactions(c.Request.Context(), &buf, f); err != nil {
		respondError(c, log.OpExport, err)
		return
	}
	respondCSV(c, "transactions.csv", &buf)
}

func (h *handlers) importTransactions(c *gin.Context) {
	body, err := importBody(c)
	if err != nil {
		respondError(c, log.OpImport, err)
		return
	}
	defer body.Close()

	n, err := h.svc.ImportTransactions(c.Request.Context(), body)
	if err != nil {
		respondError(c, log.OpImport, err)
		return
	}
	c.JSON(http.StatusOK, importResponse{Imported: n})
}

func (h *handlers) listLedger(c *gin.Context) {
	es, err := h.svc.ListLedgerEntries(c.Request.Context())
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(es))
}

func (h *handlers) createLedgerEntry(c *gin.Context) {
	var req ledgerEntryRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, log.OpCreate, err)
		return
	}
	e, err := req.toLedgerEntry()
	if err != nil {
		respondError(c, log.OpCreate, err)
		return
	}
	saved, err := h.svc.CreateLedgerEntry(c.Request.Context(), e)
	if err != nil {
		respondError(c, log.OpCreate, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *handlers) updateLedgerEntry(c *gin.Context) {
	var req ledgerEntryRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, log.OpUpdate, err)
		return
	}
	e, err := req.toLedgerEntry()
	if err != nil {
		respondError(c, log.OpUpdate, err)
		return
	}
	saved, err := h.svc.UpdateLedgerEntry(c.Request.Context(), c.Param("id"), e)
	if err != nil {
		respondError(c, log.OpUpdate, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handlers) deleteLedgerEntry(c *gin.Context) {
	if err := h.svc.DeleteLedgerEntry(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, log.OpDelete, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) ledgerReport(c *gin.Context) {
	rep, err := h.svc.LedgerReport(c.Request.Context())
	if err != nil {
		respondError(c, log.OpList, err)
		return
	}
	rep.People = nonNil(rep.People)
	c.JSON(http.StatusOK, rep)
}

func (h *handlers) exportLedger(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportLedger(c.Request.Context(), &buf); err != nil {
		respondError(c, log.OpExport, err)
		return
	}
	respondCSV(c, "ledger.csv", &buf)
}

func (h *handlers) importLedger(c *gin.Context) {
	body, err := importBody(c)
	if err != nil {
		respondError(c, log.OpImport, err)
		return
	}
	defer body.Close()

	n, err := h.svc.ImportLedger(c.Request.Context(), body)
	if err != nil {
		respondError(c, log.OpImport, err)
		return
	}
	c.JSON(http.StatusOK, importResponse{Imported: n})
}

func (h *handlers) categorize(c *gin.Context) {
	desc := c.Query("description")
	c.JSON(http.StatusOK, categorizeResponse{
		Description: desc,
		Category:    h.svc.Categorize(desc),
	})
}
