package app

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/config"
	"go-webtrack/internal/middleware"
	"go-webtrack/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and mounts every module under /api/v1.
// The returned cleanup closes the connections it opened.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L()

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	cleanup := func() { _ = sqlDB.Close() }

	if cfg.AutoMigrate {
		if err := migrate(gormDB); err != nil {
			cleanup()
			return nil, err
		}
		logger.Info("database schema migrated")
	}

	// redis backs the leave type cache and idempotency keys; both degrade to
	// pass-through without it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
		if err != nil {
			cleanup()
			return nil, err
		}
		closeDB := cleanup
		cleanup = func() {
			_ = rdb.Close()
			closeDB()
		}
	} else {
		logger.Warn("REDIS_ADDR not set; caching and idempotency disabled")
	}

	policy, err := access.NewRolePolicy(logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.ContextLogger(logger))

	registerModules(api, cfg, sqlDB, gormDB, rdb, policy, logger)
	return cleanup, nil
}
