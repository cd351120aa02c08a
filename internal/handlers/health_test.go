package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry7799/heng-studio/internal/handlers"
	"github.com/harry7799/heng-studio/internal/models"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := handlers.NewHealthHandler("heng-studio-api", "1.0.0", "file", nil)
	router.GET("/health", h.Health)
	router.GET("/api/health", h.Ping)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.0.0", body.Version)
	assert.Equal(t, map[string]string{"store": "file"}, body.Backends)

	req, _ = http.NewRequest("GET", "/api/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestHealthHandler_DegradedBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := handlers.NewHealthHandler("heng-studio-api", "1.0.0", "postgres", map[string]handlers.BackendCheck{
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
		"postgres": func(ctx context.Context) error { return nil },
	})
	router.GET("/health", h.Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unreachable", body.Backends["redis"])
	assert.Equal(t, "ok", body.Backends["postgres"])
	assert.Equal(t, "postgres", body.Backends["store"])
}
