// Package bootstrap holds the start-up steps shared by every command.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"triage/internal/infrastructure/cache"
	"triage/internal/infrastructure/config"
	"triage/internal/infrastructure/database"
	"triage/internal/shared/logger"
)

// Load reads the configuration and initializes the global logger from it.
// ENV overrides env when set.
func Load(env, configPath string) (*config.Config, logger.Interface, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger.NewLogger(), nil
}

// OpenDatabase initializes the shared connection pool.
func OpenDatabase(cfg *config.Config, log logger.Interface) (*gorm.DB, error) {
	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Infow("database connection established", "driver", cfg.Database.Driver, "host", cfg.Database.Host)
	return database.Get(), nil
}

// OpenRedis connects to Redis and pings it.
func OpenRedis(ctx context.Context, cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	client, err := cache.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	return client, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
