package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/service"
	appErrors "github.com/tirs/dashboard/pkg/errors"
	"github.com/tirs/dashboard/pkg/response"
)

// SalesHandler exposes the scoped sales listing, the dashboard summary and
// report downloads.
type SalesHandler struct {
	sales  *service.SalesService
	export *service.ExportService
}

// NewSalesHandler creates a new handler.
func NewSalesHandler(sales *service.SalesService, export *service.ExportService) *SalesHandler {
	return &SalesHandler{sales: sales, export: export}
}

// List returns the caller's visible sales rows, newest-first.
func (h *SalesHandler) List(c *gin.Context) {
	authCtx, ok := authContextFromGin(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.SaleFilter{
		Region:   c.Query("region"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}

	sales, pagination, err := h.sales.Visible(c.Request.Context(), authCtx, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sales, pagination)
}

// Summary returns the dashboard aggregate for the caller's visible rows.
func (h *SalesHandler) Summary(c *gin.Context) {
	authCtx, ok := authContextFromGin(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.sales.Summary(c.Request.Context(), authCtx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export streams the caller's sales report as csv or pdf.
func (h *SalesHandler) Export(c *gin.Context) {
	authCtx, ok := authContextFromGin(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	doc, contentType, err := h.export.RenderSales(c.Request.Context(), authCtx, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("sales-report-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, doc)
}
