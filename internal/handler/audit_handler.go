package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/service"
	"github.com/tirs/dashboard/pkg/response"
)

// AuditHandler exposes the admin audit trail endpoints.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler creates a new handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List returns recent audit entries, newest-first.
func (h *AuditHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 0)

	entries, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Sweep purges audit entries older than the retention horizon.
func (h *AuditHandler) Sweep(c *gin.Context) {
	purged, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"purged": purged}, nil)
}
