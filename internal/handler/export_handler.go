package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/internal/dto"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
	"github.com/noah-isme/lostid-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error)
}

// ExportHandler streams admin exports as attachments.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Export claims or lost IDs
// @Tags Admin Export
// @Produce text/csv
// @Produce application/pdf
// @Param type query string true "claims or lost_ids"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/export/csv [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}

	file, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
