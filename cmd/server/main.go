package main

import (
	"context"
	"log"

	"anoa.com/proofofgrind/internal/bootstrap"
	"anoa.com/proofofgrind/internal/config"
	"anoa.com/proofofgrind/internal/server"
	"anoa.com/proofofgrind/pkg/cache"
	"anoa.com/proofofgrind/pkg/database"
	"anoa.com/proofofgrind/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	ctx := context.Background()

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		zl.Fatal("redis connection failed", zap.Error(err))
	}
	if redisClient == nil {
		zl.Warn("REDIS_URL not set: events and write throttling disabled")
	} else {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(ctx, db, redisClient, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize server", zap.Error(err))
	}

	if err := srv.Run(":" + cfg.Port); err != nil {
		zl.Fatal("server exited with error", zap.Error(err))
	}
}
