package routes

import (
	"github.com/gin-gonic/gin"

	"triage/internal/interfaces/http/handlers/metrics"
	"triage/internal/interfaces/http/middleware"
)

type MetricsRouteConfig struct {
	Handler          *metrics.Handler
	APIKeyMiddleware *middleware.APIKeyMiddleware
	RateLimiter      *middleware.RateLimiter
}

func SetupMetricsRoutes(engine *gin.Engine, config *MetricsRouteConfig) {
	api := engine.Group("/api/metrics")
	api.Use(config.RateLimiter.Limit(), config.APIKeyMiddleware.RequireAPIKey())
	{
		api.GET("/tempo-espera", config.Handler.GetWaitTime)
		api.GET("/tempo-espera/:unidade", config.Handler.GetUnitAggregate)
	}
}
