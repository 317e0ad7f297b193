package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(services *service.Services, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		services: services,
		log:      log.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.services.Category.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Get handles GET /v1/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := h.services.Category.Get(c.Request.Context(), id)
	writeResult(c, h.log, http.StatusOK, category, err)
}

// Create handles POST /v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.services.Category.Create(c.Request.Context(), identity(c), &req)
	writeResult(c, h.log, http.StatusCreated, category, err)
}

// Rename handles PUT /v1/categories/:id
func (h *CategoryHandler) Rename(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.services.Category.Rename(c.Request.Context(), identity(c), id, &req)
	writeResult(c, h.log, http.StatusOK, category, err)
}

// Delete handles DELETE /v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.services.Category.Delete(c.Request.Context(), identity(c), id)
	writeResult(c, h.log, http.StatusNoContent, nil, err)
}
