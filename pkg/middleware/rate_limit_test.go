package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware_BlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.0001, 2)) // effectively no refill, burst of 2
	r.GET("/x", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	send := func(ip string) int {
		req := httptest.NewRequest("GET", "/x", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, send("10.0.0.1"))
	require.Equal(t, http.StatusOK, send("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	// a different client IP has its own bucket
	require.Equal(t, http.StatusOK, send("10.0.0.2"))
}
