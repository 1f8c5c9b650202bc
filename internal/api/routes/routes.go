package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bridgeport-service/bridgeport/internal/api/handlers"
	"github.com/bridgeport-service/bridgeport/internal/api/middleware"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/di"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	if container.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Global middleware - order matters
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	bridgeHandlers := handlers.NewBridgeHandlers(container.BridgeService, container.Logger)
	poolHandlers := handlers.NewPoolHandlers(container.PoolService, container.LiquidityService, container.Logger)
	tokenHandlers := handlers.NewTokenHandlers(container.TokenService, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.DB, container.Redis, container.Logger)

	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		bridgeGroup := v1.Group("/bridge")
		{
			bridgeGroup.POST("/transfers", bridgeHandlers.Create)
			bridgeGroup.GET("/transfers", bridgeHandlers.List)
			bridgeGroup.GET("/transfers/resumable", bridgeHandlers.ListResumable)
			bridgeGroup.GET("/transfers/:id", bridgeHandlers.Get)
			bridgeGroup.POST("/transfers/:id/resume", bridgeHandlers.Resume)
			bridgeGroup.POST("/transfers/:id/abort", bridgeHandlers.Abort)
			bridgeGroup.DELETE("/transfers/:id", bridgeHandlers.Dismiss)
			bridgeGroup.GET("/fees", bridgeHandlers.Fees)
		}

		poolGroup := v1.Group("/pools")
		{
			poolGroup.GET("/v2", poolHandlers.ListV2)
			poolGroup.GET("/v3", poolHandlers.ListV3)
		}

		v1.POST("/liquidity/quote", poolHandlers.Quote)

		tokenGroup := v1.Group("/tokens")
		{
			tokenGroup.GET("", tokenHandlers.List)
			tokenGroup.POST("/import", tokenHandlers.Import)
			tokenGroup.DELETE("/:address", tokenHandlers.Remove)
		}
	}

	return router
}
