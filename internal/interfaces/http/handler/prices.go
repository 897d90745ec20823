package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gameshop/backend/internal/application/catalog"
	"github.com/gameshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PriceImporter applies CSV price sheets
type PriceImporter interface {
	ImportPrices(ctx context.Context, r io.Reader) (*catalog.ImportResult, error)
}

// PriceImportHandler handles bulk price updates
type PriceImportHandler struct {
	BaseHandler
	importer PriceImporter
}

// NewPriceImportHandler creates a new PriceImportHandler
func NewPriceImportHandler(importer PriceImporter) *PriceImportHandler {
	return &PriceImportHandler{importer: importer}
}

// RegisterRoutes mounts the import endpoint
func (h *PriceImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/prices/import", h.Import)
}

var csvContentTypes = []string{"text/csv", "text/plain", "application/octet-stream", "application/vnd.ms-excel"}

func isCSVContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	for _, t := range csvContentTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// Import godoc
// @Summary      Import a price sheet
// @Description  Sets many prices at once from a CSV sheet with the columns shop, product, trade_type and price.
// @Description  The sheet is sent as the request body or as the "file" field of a multipart form.
// @Tags         prices
// @Accept       text/csv
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file false "CSV price sheet"
// @Success      200  {object} dto.Response{data=catalog.ImportResult}
// @Failure      400  {object} dto.Response
// @Failure      413  {object} dto.Response
// @Failure      415  {object} dto.Response
// @Router       /prices/import [post]
func (h *PriceImportHandler) Import(c *gin.Context) {
	var sheet io.Reader = c.Request.Body

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Price sheet exceeds maximum allowed size")
				return
			}
			h.BadRequest(c, "file is required")
			return
		}
		defer file.Close()

		if !isCSVContentType(header.Header.Get("Content-Type")) {
			h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeInvalidInput, "file must be a CSV file")
			return
		}
		sheet = file
	} else if !isCSVContentType(c.ContentType()) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeInvalidInput, "body must be a CSV price sheet")
		return
	}

	result, err := h.importer.ImportPrices(c.Request.Context(), sheet)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
