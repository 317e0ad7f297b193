package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

// DocumentHandler handles document download, email and export endpoints
type DocumentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(services *service.Services, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		services: services,
		log:      log.With().Str("handler", "document").Logger(),
	}
}

// documentOptions reads ?format=txt|html|json&include_comments=true
func documentOptions(c *gin.Context) (models.DocumentOptions, bool) {
	var opts models.DocumentOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document options"})
		return opts, false
	}
	return opts, true
}

// Download handles GET /v1/materials/:id/document
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	opts, ok := documentOptions(c)
	if !ok {
		return
	}

	doc, err := h.services.Document.Render(c.Request.Context(), identity(c), id, opts)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// Send handles POST /v1/materials/:id/document/send. The document is
// queued for email to the caller regardless of their notification setting.
func (h *DocumentHandler) Send(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	opts, ok := documentOptions(c)
	if !ok {
		return
	}

	if err := h.services.Document.Send(c.Request.Context(), identity(c), id, opts); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "document queued for delivery"})
}

// StreamExport handles GET /v1/materials/export?format=ndjson|json and
// streams every approved material
func (h *DocumentHandler) StreamExport(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportNDJSON)
	switch format {
	case service.ExportNDJSON:
		c.Header("Content-Type", "application/x-ndjson")
	case service.ExportJSON:
		c.Header("Content-Type", "application/json")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=materials.%s", format))
	c.Status(http.StatusOK)

	if err := h.services.Document.StreamApproved(c.Request.Context(), c.Writer, format); err != nil {
		// Headers are already sent; the truncated body is all the client sees
		h.log.Error().Err(err).Str("format", format).Msg("Export failed")
	}
}
