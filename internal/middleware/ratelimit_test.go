package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/limited", RateLimit(rps, burst), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func hit(router *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	router := newRateLimitedRouter(1, 5)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))
	}
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	router := newRateLimitedRouter(0.001, 2)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2"))
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.2"))
}

func TestRateLimit_PerClientBuckets(t *testing.T) {
	router := newRateLimitedRouter(0.001, 1)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.3"))
	// A different client gets its own bucket.
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.4"))
}
