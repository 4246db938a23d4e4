package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/proofofgrind/internal/config"
	"anoa.com/proofofgrind/internal/middleware"
	"anoa.com/proofofgrind/internal/scheduler"

	authHttp "anoa.com/proofofgrind/internal/modules/auth/delivery/http"
	authService "anoa.com/proofofgrind/internal/modules/auth/service"

	grinderHttp "anoa.com/proofofgrind/internal/modules/grinder/delivery/http"
	grinderRepo "anoa.com/proofofgrind/internal/modules/grinder/repository"
	grinderService "anoa.com/proofofgrind/internal/modules/grinder/service"

	leaderboardHttp "anoa.com/proofofgrind/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/proofofgrind/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/proofofgrind/internal/modules/leaderboard/service"

	notiHttp "anoa.com/proofofgrind/internal/modules/notification/delivery/http"
	notifService "anoa.com/proofofgrind/internal/modules/notification/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	scheduler   *scheduler.Scheduler
	db          *gorm.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// services are the dependencies the router needs.
type services struct {
	sessions    authService.SessionService
	grinders    grinderService.GrinderService
	leaderboard leaderboardService.LeaderboardService
}

// NewServer wires every module, restores engine state from the database and
// registers the background jobs. redisClient may be nil.
func NewServer(ctx context.Context, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	notificationSvc := notifService.NewNotificationService(redisClient)

	grinderSvc, err := grinderService.NewGrinderService(
		grinderRepo.NewGrinderRepository(db),
		notificationSvc,
		RulesFromConfig(cfg),
		logger.Named("grinder"),
	)
	if err != nil {
		return nil, err
	}
	if err := grinderSvc.Restore(ctx); err != nil {
		return nil, err
	}

	leaderboardSvc := leaderboardService.NewLeaderboardService(
		grinderSvc,
		leaderboardRepo.NewLeaderboardRepository(db),
		logger.Named("leaderboard"),
	)

	jobs := scheduler.NewScheduler(logger.Named("scheduler"))
	if err := jobs.RegisterJob(leaderboardService.NewSnapshotJob(leaderboardSvc, cfg.SnapshotSchedule)); err != nil {
		return nil, err
	}

	router := newRouter(cfg, services{
		sessions:    authService.NewSessionService(cfg.JWTSecret, cfg.SessionTTL),
		grinders:    grinderSvc,
		leaderboard: leaderboardSvc,
	}, redisClient, logger)

	return &Server{
		engine:      router,
		scheduler:   jobs,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// RulesFromConfig maps configuration onto engine rules. Point values keep
// their defaults.
func RulesFromConfig(cfg *config.Config) grinderService.Rules {
	rules := grinderService.DefaultRules()
	rules.CooldownInterval = cfg.CooldownInterval
	rules.StreakWindow = cfg.StreakWindow
	rules.CheckInPeriod = cfg.CheckInPeriod
	rules.BoardSize = cfg.LeaderboardSize
	return rules
}

func newRouter(cfg *config.Config, svcs services, redisClient *redis.Client, logger *zap.Logger) *gin.Engine {
	authHandler := authHttp.NewAuthHandler(svcs.sessions)
	grinderHandler := grinderHttp.NewGrinderHandler(svcs.grinders)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(svcs.leaderboard)
	notificationHandler := notiHttp.NewNotificationHandler(redisClient, logger.Named("events"))

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/events/ws"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(svcs.sessions)
	throttle := middleware.WriteThrottle(redisClient, cfg.RateLimitWrite, logger.Named("ratelimit"))

	api := router.Group("/api")

	// Public routes (no auth required)
	api.POST("/auth/session", authHandler.CreateSession)

	grinders := api.Group("/grinders/:address")
	{
		grinders.GET("", grinderHandler.GetStats)
		grinders.GET("/registered", grinderHandler.IsRegistered)
		grinders.GET("/cooldown", grinderHandler.GetCooldown)
		grinders.GET("/history", grinderHandler.GetHistory)
	}
	api.GET("/tokens/:token_id/uri", grinderHandler.GetTokenURI)

	leaderboard := api.Group("/leaderboard")
	{
		leaderboard.GET("", leaderboardHandler.GetLeaderboard)
		leaderboard.GET("/top", leaderboardHandler.GetTopGrinders)
		leaderboard.GET("/snapshots/latest", leaderboardHandler.GetLatestSnapshot)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/register", throttle, grinderHandler.Register)
		protected.POST("/grind", throttle, grinderHandler.Grind)
		protected.POST("/boost", throttle, grinderHandler.Boost)
		protected.POST("/check-in", throttle, grinderHandler.CheckIn)

		protected.GET("/events/ws", notificationHandler.HandleWebSocket)
	}

	return router
}

// Run starts the background jobs and serves HTTP until the listener fails.
func (s *Server) Run(addr string) error {
	s.scheduler.Start()
	defer s.scheduler.Stop()

	s.logger.Info("server listening", zap.String("addr", addr))
	if err := s.engine.Run(addr); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
