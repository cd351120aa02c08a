package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/harry7799/heng-studio/internal/logging"
	"github.com/harry7799/heng-studio/internal/middleware"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		*seen = logging.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequestID_ReusesCallerID(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "abc-123", seen)
}

func TestRequestID_GeneratesID(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	rid := w.Header().Get(middleware.RequestIDHeader)
	assert.Len(t, rid, 32)
	assert.Equal(t, rid, seen)

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.NotEqual(t, rid, w2.Header().Get(middleware.RequestIDHeader))
}
