package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/harry7799/heng-studio/internal/middleware"
)

func TestClientRateLimiter_PerClientBurst(t *testing.T) {
	l := middleware.NewClientRateLimiter(1, 2)
	assert.True(t, l.Enabled())

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	assert.True(t, l.Allow("10.0.0.2"))
}

func TestClientRateLimiter_Disabled(t *testing.T) {
	l := middleware.NewClientRateLimiter(0, 1)
	assert.False(t, l.Enabled())
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}

	var nilLimiter *middleware.ClientRateLimiter
	assert.True(t, nilLimiter.Allow("10.0.0.1"))
}

func TestRateLimit_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimit(middleware.NewClientRateLimiter(1, 1)))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.0.2.10:1234"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}
