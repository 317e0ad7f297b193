package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/query"
	"github.com/text-materials-api/internal/service"
)

const paginationHeader = "X-Pagination"

// MaterialHandler handles text material and moderation endpoints
type MaterialHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(services *service.Services, log zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		services: services,
		log:      log.With().Str("handler", "material").Logger(),
	}
}

// listParams reads the listing query string. approvalStatus is presence
// aware: an absent parameter means no filtering, a present but empty one
// matches nothing.
func listParams(c *gin.Context) (query.Params, error) {
	pageNumber, err := queryInt(c, "pageNumber")
	if err != nil {
		return query.Params{}, err
	}
	pageSize, err := queryInt(c, "pageSize")
	if err != nil {
		return query.Params{}, err
	}
	p := query.NewParams(pageNumber, pageSize)

	if p.StartDate, err = query.ParseDate(c.Query("startDate")); err != nil {
		return query.Params{}, fmt.Errorf("startDate: %w", err)
	}
	if p.EndDate, err = query.ParseDate(c.Query("endDate")); err != nil {
		return query.Params{}, fmt.Errorf("endDate: %w", err)
	}

	p.SearchTitle = c.Query("searchTitle")
	p.SearchCategory = c.Query("searchCategory")
	p.SearchAuthor = c.Query("searchAuthor")

	if raw, ok := c.GetQueryArray("approvalStatus"); ok {
		if p.ApprovalStatus, err = query.ParseStatuses(raw); err != nil {
			return query.Params{}, err
		}
	}
	if orderBy := c.Query("orderBy"); orderBy != "" {
		p.OrderBy = orderBy
	}
	return p, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// writePage writes the items of page and its metadata in X-Pagination
func (h *MaterialHandler) writePage(c *gin.Context, page *query.PagedList[models.TextMaterial], err error) {
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header(paginationHeader, page.HeaderValue())
	c.JSON(http.StatusOK, page.Items)
}

// listing runs one of the paged listings after parsing the query string
func (h *MaterialHandler) listing(c *gin.Context, list func(query.Params) (*query.PagedList[models.TextMaterial], error)) {
	params, err := listParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := list(params)
	h.writePage(c, page, err)
}

// List handles GET /v1/materials
func (h *MaterialHandler) List(c *gin.Context) {
	h.listing(c, func(p query.Params) (*query.PagedList[models.TextMaterial], error) {
		return h.services.Material.List(c.Request.Context(), identity(c), p)
	})
}

// ListByUser handles GET /v1/users/:id/materials
func (h *MaterialHandler) ListByUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.listing(c, func(p query.Params) (*query.PagedList[models.TextMaterial], error) {
		return h.services.Material.ListByUser(c.Request.Context(), identity(c), userID, p)
	})
}

// ListSaved handles GET /v1/me/saved
func (h *MaterialHandler) ListSaved(c *gin.Context) {
	h.listing(c, func(p query.Params) (*query.PagedList[models.TextMaterial], error) {
		return h.services.Material.ListSaved(c.Request.Context(), identity(c), p)
	})
}

// ListLiked handles GET /v1/me/liked
func (h *MaterialHandler) ListLiked(c *gin.Context) {
	h.listing(c, func(p query.Params) (*query.PagedList[models.TextMaterial], error) {
		return h.services.Material.ListLiked(c.Request.Context(), identity(c), p)
	})
}

// Get handles GET /v1/materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.services.Material.Get(c.Request.Context(), identity(c), id)
	writeResult(c, h.log, http.StatusOK, detail, err)
}

// Create handles POST /v1/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req models.CreateMaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := h.services.Material.Create(c.Request.Context(), identity(c), &req)
	if material != nil {
		c.Header("Location", fmt.Sprintf("/v1/materials/%d", material.ID))
	}
	writeResult(c, h.log, http.StatusCreated, material, err)
}

// Edit handles PUT /v1/materials/:id
func (h *MaterialHandler) Edit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateMaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := h.services.Material.Edit(c.Request.Context(), identity(c), id, &req)
	writeResult(c, h.log, http.StatusOK, material, err)
}

// Delete handles DELETE /v1/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.services.Material.Delete(c.Request.Context(), identity(c), id)
	writeResult(c, h.log, http.StatusNoContent, nil, err)
}

// Approve handles POST /v1/materials/:id/approve
func (h *MaterialHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	material, err := h.services.Material.Approve(c.Request.Context(), identity(c), id)
	writeResult(c, h.log, http.StatusOK, material, err)
}

// Reject handles POST /v1/materials/:id/reject. The body is optional.
func (h *MaterialHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.RejectRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	material, err := h.services.Material.Reject(c.Request.Context(), identity(c), id, req.Reason)
	writeResult(c, h.log, http.StatusOK, material, err)
}

// Like handles PUT /v1/materials/:id/like
func (h *MaterialHandler) Like(c *gin.Context) {
	h.associate(c, h.services.Material.Like)
}

// Unlike handles DELETE /v1/materials/:id/like
func (h *MaterialHandler) Unlike(c *gin.Context) {
	h.associate(c, h.services.Material.Unlike)
}

// Save handles PUT /v1/materials/:id/save
func (h *MaterialHandler) Save(c *gin.Context) {
	h.associate(c, h.services.Material.Save)
}

// Unsave handles DELETE /v1/materials/:id/save
func (h *MaterialHandler) Unsave(c *gin.Context) {
	h.associate(c, h.services.Material.Unsave)
}

type associateFunc func(ctx context.Context, caller *models.Identity, id int64) (*models.MaterialDetail, error)

func (h *MaterialHandler) associate(c *gin.Context, fn associateFunc) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := fn(c.Request.Context(), identity(c), id)
	writeResult(c, h.log, http.StatusOK, detail, err)
}
