package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/tirs/dashboard/internal/service"
)

// HealthHandler serves the liveness, readiness and data health probes.
type HealthHandler struct {
	db     *sqlx.DB
	health *service.HealthService
}

// NewHealthHandler creates a new handler.
func NewHealthHandler(db *sqlx.DB, health *service.HealthService) *HealthHandler {
	return &HealthHandler{db: db, health: health}
}

// Live reports that the process is up.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database is reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Data returns the data health report behind the dashboard.
func (h *HealthHandler) Data(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	status := http.StatusOK
	if report.Status == "error" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
