package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"triage/internal/infrastructure/config"
	"triage/internal/interfaces/adapters"
	"triage/internal/interfaces/http/handlers"
	"triage/internal/interfaces/http/handlers/metrics"
	"triage/internal/interfaces/http/middleware"
	"triage/internal/shared/logger"
)

// Container wires the read API on top of the shared triage services.
type Container struct {
	engine *gin.Engine
	cfg    *config.Config
	log    logger.Interface

	metricsHandler *metrics.Handler
	healthHandler  *handlers.HealthHandler
	apiKey         *middleware.APIKeyMiddleware
	rateLimiter    *middleware.RateLimiter
}

func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) *Container {
	services := adapters.NewTriageServices(db, redisClient, log)

	deps := map[string]handlers.Pinger{
		"redis": handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}

	rateLimiter := middleware.NewRateLimiter(redisClient, cfg.MetricsAPI.RateLimitPerMinute, time.Minute, log.Named("middleware.ratelimit"))

	return &Container{
		engine:         gin.New(),
		cfg:            cfg,
		log:            log,
		metricsHandler: metrics.NewHandler(services.Estimator, log.Named("handlers.metrics")),
		healthHandler:  handlers.NewHealthHandler(deps, log.Named("handlers.health")),
		apiKey:         middleware.NewAPIKeyMiddleware(&cfg.MetricsAPI, log.Named("middleware.apikey")),
		rateLimiter:    rateLimiter,
	}
}
