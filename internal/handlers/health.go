package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/models"
)

// BackendCheck reports whether an optional backend is reachable.
type BackendCheck func(ctx context.Context) error

type HealthHandler struct {
	service string
	version string
	store   string
	checks  map[string]BackendCheck
}

func NewHealthHandler(service, version, store string, checks map[string]BackendCheck) *HealthHandler {
	return &HealthHandler{service: service, version: version, store: store, checks: checks}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and its optional backends
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	backends := map[string]string{"store": h.store}
	status := "ok"
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			backends[name] = "unreachable"
			status = "degraded"
			continue
		}
		backends[name] = "ok"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   status,
		Service:  h.service,
		Version:  h.version,
		Backends: backends,
	})
}

// Ping godoc
// @Summary     Liveness check
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]bool
// @Router      /api/health [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
