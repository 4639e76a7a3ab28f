package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spinpointhq/spinpoint-backend/internal/config"
	"github.com/spinpointhq/spinpoint-backend/internal/handlers"
	"github.com/spinpointhq/spinpoint-backend/internal/middleware"
	"github.com/spinpointhq/spinpoint-backend/internal/models"
)

// Handlers collects the constructed handlers the router mounts.
type Handlers struct {
	CheckIn    *handlers.CheckInHandler
	Spin       *handlers.SpinHandler
	Player     *handlers.PlayerHandler
	Redemption *handlers.RedemptionHandler
	Admin      *handlers.AdminHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Player routes
	player := router.Group("/api/v1")
	player.Use(middleware.PlayerAuth(cfg))
	{
		player.POST("/checkins", h.CheckIn.CheckIn)
		player.POST("/spins", h.Spin.Spin)

		me := player.Group("/players/me")
		{
			me.GET("/balance", h.Player.GetBalance)
			me.GET("/ledger", h.Player.GetLedger)
			me.GET("/prizes", h.Player.GetPrizes)
			me.GET("/spins", h.Player.GetSpins)
		}
	}

	// Staff routes
	staff := router.Group("/api/v1/staff")
	staff.Use(middleware.StaffAuth(cfg, models.RoleStaff, models.RoleAdmin))
	{
		redemptions := staff.Group("/redemptions")
		{
			redemptions.GET("/:code", h.Redemption.Lookup)
			redemptions.POST("/:code/complete", h.Redemption.Complete)
		}
	}

	// Admin routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.StaffAuth(cfg, models.RoleAdmin))
	{
		admin.POST("/cleanup-expired", h.Admin.CleanupExpired)
	}

	return router
}
