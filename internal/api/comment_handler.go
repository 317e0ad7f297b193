package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

// CommentHandler handles comment thread endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// List handles GET /v1/materials/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	materialID, ok := paramID(c, "id")
	if !ok {
		return
	}
	threads, err := h.services.Comment.ListThreads(c.Request.Context(), identity(c), materialID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

// Create handles POST /v1/materials/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	materialID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), identity(c), materialID, &req)
	writeResult(c, h.log, http.StatusCreated, comment, err)
}

// Edit handles PUT /v1/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Comment.Edit(c.Request.Context(), identity(c), id, &req)
	writeResult(c, h.log, http.StatusOK, comment, err)
}

// Delete handles DELETE /v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.services.Comment.Delete(c.Request.Context(), identity(c), id)
	writeResult(c, h.log, http.StatusNoContent, nil, err)
}
