package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"budget/internal/core"
	"budget/internal/log"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type categorizeResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

// statusFor maps a service or parsing error to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case isValidationError(err),
		errors.Is(err, core.ErrParse),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidTransType),
		errors.Is(err, core.ErrInvalidEntryType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status it maps to. Server errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	msg := err.Error()
	switch {
	case status == http.StatusUnprocessableEntity && isValidationError(err):
		msg = validationMessage(err)
	case status >= http.StatusInternalServerError:
		ctx := c.Request.Context()
		log.NewStructuredLogger(log.FromContext(ctx)).
			LogError(ctx, "Request failed", err, log.ComponentHTTP, op, nil)
		msg = "internal server error"
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// respondCSV sends a fully rendered CSV document as an attachment.
func respondCSV(c *gin.Context, filename string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
