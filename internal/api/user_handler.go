package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

// UserHandler handles profile and role endpoints
type UserHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		log:      log.With().Str("handler", "user").Logger(),
	}
}

// Me handles GET /v1/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.services.User.Get(c.Request.Context(), identity(c).UserID)
	writeResult(c, h.log, http.StatusOK, user, err)
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.User.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	// Only the public part of another user's profile
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.services.User.List(c.Request.Context(), identity(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetNotifications handles PUT /v1/me/notifications
func (h *UserHandler) SetNotifications(c *gin.Context) {
	var req models.NotificationSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ReceiveNotifications == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receive_notifications is required"})
		return
	}

	user, err := h.services.User.SetNotifications(c.Request.Context(), identity(c), *req.ReceiveNotifications)
	writeResult(c, h.log, http.StatusOK, user, err)
}

// Notifications handles GET /v1/me/notifications?limit=...
func (h *UserHandler) Notifications(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	list, err := h.services.User.Notifications(c.Request.Context(), identity(c), limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GrantRole handles POST /v1/users/:id/roles
func (h *UserHandler) GrantRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.services.User.GrantRole(c.Request.Context(), identity(c), id, req.Role)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info().Int64("user_id", id).Str("role", req.Role).Msg("Role granted")
	c.JSON(http.StatusOK, user)
}

// RevokeRole handles DELETE /v1/users/:id/roles/:role
func (h *UserHandler) RevokeRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	role := c.Param("role")

	user, err := h.services.User.RevokeRole(c.Request.Context(), identity(c), id, role)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info().Int64("user_id", id).Str("role", role).Msg("Role revoked")
	c.JSON(http.StatusOK, user)
}
