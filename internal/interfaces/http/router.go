package http

import (
	"github.com/gin-gonic/gin"

	"triage/internal/interfaces/http/middleware"
	"triage/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Logger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log.Named("http")))
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.CORS(c.cfg.MetricsAPI.AllowedOrigins, c.cfg.MetricsAPI.APIKeyHeader))

	c.engine.GET("/health", c.healthHandler.HealthCheck)

	routes.SetupMetricsRoutes(c.engine, &routes.MetricsRouteConfig{
		Handler:          c.metricsHandler,
		APIKeyMiddleware: c.apiKey,
		RateLimiter:      c.rateLimiter,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}
