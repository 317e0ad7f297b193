package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/config"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	userHandler := NewUserHandler(services, log)
	categoryHandler := NewCategoryHandler(services, log)
	materialHandler := NewMaterialHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	banHandler := NewBanHandler(services, log)
	documentHandler := NewDocumentHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(services, log))
	router.GET("/metrics", metricsHandler(services, log))

	// API v1
	v1 := router.Group("/v1")
	v1.Use(authenticate(services.Auth))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Endpoints acting on the caller's own account
		me := v1.Group("/me", requireAuth())
		{
			me.GET("", userHandler.Me)
			me.PUT("/notifications", userHandler.SetNotifications)
			me.GET("/notifications", userHandler.Notifications)
			me.GET("/saved", materialHandler.ListSaved)
			me.GET("/liked", materialHandler.ListLiked)
		}

		users := v1.Group("/users")
		{
			users.GET("", requireRole(models.RoleAdmin), userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.GET("/:id/materials", materialHandler.ListByUser)
			users.POST("/:id/roles", requireRole(models.RoleAdmin), userHandler.GrantRole)
			users.DELETE("/:id/roles/:role", requireRole(models.RoleAdmin), userHandler.RevokeRole)

			ban := users.Group("/:id/ban", requireRole(models.RoleAdmin))
			{
				ban.GET("", banHandler.Get)
				ban.POST("", banHandler.Ban)
				ban.PUT("", banHandler.Renew)
				ban.DELETE("", banHandler.Unban)
			}
		}

		bans := v1.Group("/bans", requireRole(models.RoleAdmin))
		{
			bans.GET("", banHandler.List)
			bans.DELETE("/:id", banHandler.Delete)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.POST("", requireRole(models.RoleAdmin), categoryHandler.Create)
			categories.PUT("/:id", requireRole(models.RoleAdmin), categoryHandler.Rename)
			categories.DELETE("/:id", requireRole(models.RoleAdmin), categoryHandler.Delete)
		}

		materials := v1.Group("/materials")
		{
			materials.GET("", materialHandler.List)
			materials.GET("/export", documentHandler.StreamExport)
			materials.POST("", requireAuth(), materialHandler.Create)
			materials.GET("/:id", materialHandler.Get)
			materials.PUT("/:id", requireAuth(), materialHandler.Edit)
			materials.DELETE("/:id", requireAuth(), materialHandler.Delete)

			materials.POST("/:id/approve", requireRole(models.RoleManager), materialHandler.Approve)
			materials.POST("/:id/reject", requireRole(models.RoleManager), materialHandler.Reject)

			materials.PUT("/:id/like", requireAuth(), materialHandler.Like)
			materials.DELETE("/:id/like", requireAuth(), materialHandler.Unlike)
			materials.PUT("/:id/save", requireAuth(), materialHandler.Save)
			materials.DELETE("/:id/save", requireAuth(), materialHandler.Unsave)

			materials.GET("/:id/document", documentHandler.Download)
			materials.POST("/:id/document/send", requireAuth(), documentHandler.Send)

			materials.GET("/:id/comments", commentHandler.List)
			materials.POST("/:id/comments", requireAuth(), commentHandler.Create)
		}

		comments := v1.Group("/comments", requireAuth())
		{
			comments.PUT("/:id", commentHandler.Edit)
			comments.DELETE("/:id", commentHandler.Delete)
		}
	}

	return router
}

// healthCheck reports whether the database is reachable
func healthCheck(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := services.System.Health(c.Request.Context()); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "text-materials-api",
		})
	}
}

// metricsHandler returns row counts
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.System.Stats(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"database":  stats,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
