package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

// BanHandler handles the ban lifecycle endpoints. All of them are admin only.
type BanHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBanHandler creates a new BanHandler
func NewBanHandler(services *service.Services, log zerolog.Logger) *BanHandler {
	return &BanHandler{
		services: services,
		log:      log.With().Str("handler", "ban").Logger(),
	}
}

// List handles GET /v1/bans
func (h *BanHandler) List(c *gin.Context) {
	bans, err := h.services.Ban.List(c.Request.Context(), identity(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bans)
}

// Get handles GET /v1/users/:id/ban
func (h *BanHandler) Get(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ban, err := h.services.Ban.Get(c.Request.Context(), identity(c), userID)
	writeResult(c, h.log, http.StatusOK, ban, err)
}

// Ban handles POST /v1/users/:id/ban
func (h *BanHandler) Ban(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.BanRequest
	if !bindJSON(c, &req) {
		return
	}

	ban, err := h.services.Ban.BanUser(c.Request.Context(), identity(c), userID, &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info().Int64("user_id", userID).Time("expires", ban.Expires).Msg("User banned")
	c.JSON(http.StatusCreated, ban)
}

// Renew handles PUT /v1/users/:id/ban
func (h *BanHandler) Renew(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.BanRequest
	if !bindJSON(c, &req) {
		return
	}

	ban, err := h.services.Ban.RenewBan(c.Request.Context(), identity(c), userID, &req)
	writeResult(c, h.log, http.StatusOK, ban, err)
}

// Unban handles DELETE /v1/users/:id/ban
func (h *BanHandler) Unban(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.services.Ban.Unban(c.Request.Context(), identity(c), userID)
	writeResult(c, h.log, http.StatusNoContent, nil, err)
}

// Delete handles DELETE /v1/bans/:id
func (h *BanHandler) Delete(c *gin.Context) {
	banID, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.services.Ban.DeleteBan(c.Request.Context(), identity(c), banID)
	writeResult(c, h.log, http.StatusNoContent, nil, err)
}
