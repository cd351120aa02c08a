package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/models"
)

const AdminTokenHeader = "X-Admin-Token"

type Decision int

const (
	Allowed Decision = iota
	Unauthorized
	NotConfigured
)

// AdminGate checks a provided token against the single admin secret
// configured at startup.
type AdminGate struct {
	token []byte
}

func NewAdminGate(adminToken string) *AdminGate {
	return &AdminGate{token: []byte(strings.TrimSpace(adminToken))}
}

func (g *AdminGate) Configured() bool {
	return len(g.token) > 0
}

func (g *AdminGate) Authorize(provided string) Decision {
	if !g.Configured() {
		return NotConfigured
	}
	p := []byte(strings.TrimSpace(provided))
	if len(p) == 0 || subtle.ConstantTimeCompare(p, g.token) != 1 {
		return Unauthorized
	}
	return Allowed
}

// RequireAdmin aborts the request unless it carries the admin token. With no
// token configured every request is refused with 503.
func RequireAdmin(gate *AdminGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch gate.Authorize(c.GetHeader(AdminTokenHeader)) {
		case Allowed:
			c.Next()
		case NotConfigured:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error: "Admin is not configured. Set ADMIN_TOKEN on the API server.",
			})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Unauthorized",
			})
		}
	}
}
