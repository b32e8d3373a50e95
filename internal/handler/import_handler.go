package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/service"
	appErrors "github.com/tirs/dashboard/pkg/errors"
	"github.com/tirs/dashboard/pkg/response"
)

// ImportHandler accepts CSV uploads for the bulk import endpoints.
type ImportHandler struct {
	service *service.ImportService
}

// NewImportHandler creates a new handler.
func NewImportHandler(svc *service.ImportService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Sales imports a sales CSV uploaded as multipart field "file".
func (h *ImportHandler) Sales(c *gin.Context) {
	authCtx, ok := authContextFromGin(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	result, err := h.service.ImportSalesCSV(c.Request.Context(), authCtx, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Users imports a users CSV uploaded as multipart field "file".
func (h *ImportHandler) Users(c *gin.Context) {
	authCtx, ok := authContextFromGin(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	result, err := h.service.ImportUsersCSV(c.Request.Context(), authCtx, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func openUpload(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart field \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open uploaded file")
	}
	return file, nil
}
