// Package bootstrap opens the shared runtime resources used by the commands.
package bootstrap

import (
	"fmt"
	"log/slog"

	"boatlog/internal/cache"
	"boatlog/internal/config"
	"boatlog/internal/database"
	"boatlog/internal/middleware"
	"boatlog/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCategories upserts the built-in forum categories after connecting.
	SeedCategories bool
	// SkipRedis leaves the Redis client nil, for commands that only touch the gateway.
	SkipRedis bool
}

// Runtime holds the connections a command needs.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// InitRuntime connects to the gateway and Redis and optionally seeds categories.
// Redis is optional: an unreachable server yields a nil client.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return initWithDB(cfg, db, opts)
}

func initWithDB(cfg *config.Config, db *gorm.DB, opts Options) (*Runtime, error) {
	rt := &Runtime{DB: db}
	if !opts.SkipRedis {
		rt.Redis = cache.InitRedis(cfg.RedisURL)
	}

	if opts.SeedCategories {
		cats, err := seed.Categories(db)
		if err != nil {
			return nil, fmt.Errorf("failed to seed built-in categories: %w", err)
		}
		middleware.Logger.Info("built-in categories ensured", slog.Int("count", len(cats)))
	}

	return rt, nil
}

// Close releases the gateway and Redis connections.
func (r *Runtime) Close() error {
	if r.Redis != nil {
		_ = cache.Close()
	}
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
