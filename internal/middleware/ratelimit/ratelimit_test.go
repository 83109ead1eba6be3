package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	_, err := NewLimiter("sixty per minute")
	assert.Error(t, err)

	l, err := NewLimiter("")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestMiddlewareLimitsPerKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, err := NewLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(Middleware(l, func(c *gin.Context) string { return c.GetHeader("X-Client") }))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("a").Code)
	w := call("a")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusTooManyRequests, call("a").Code)
	assert.Equal(t, http.StatusOK, call("b").Code, "other clients keep their own budget")
}
