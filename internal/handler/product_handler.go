package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/service"
	"github.com/tirs/dashboard/pkg/response"
)

// ProductHandler exposes the shared product catalog.
type ProductHandler struct {
	service *service.ProductService
}

// NewProductHandler creates a new handler.
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{service: svc}
}

// List returns all products.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, nil)
}
