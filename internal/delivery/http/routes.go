package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/9endu/Dealicious/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *IPRateLimiter
	if cfg.RateLimit.PerIP > 0 {
		limiter = NewIPRateLimiter(float64(cfg.RateLimit.PerIP), cfg.RateLimit.Burst)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter))
	{
		offers := v1.Group("/offers")
		{
			offers.POST("/verify", handler.VerifyOffer)
			offers.POST("/verify/upload", handler.VerifyOfferUpload)
		}
	}

	return router
}
