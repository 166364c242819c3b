package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mrth-run/mrth-api/api/swagger"
	"github.com/mrth-run/mrth-api/internal/handler"
	internalmiddleware "github.com/mrth-run/mrth-api/internal/middleware"
	"github.com/mrth-run/mrth-api/internal/ocr"
	"github.com/mrth-run/mrth-api/internal/repository"
	"github.com/mrth-run/mrth-api/internal/service"
	"github.com/mrth-run/mrth-api/pkg/cache"
	"github.com/mrth-run/mrth-api/pkg/config"
	"github.com/mrth-run/mrth-api/pkg/database"
	"github.com/mrth-run/mrth-api/pkg/logger"
	corsmiddleware "github.com/mrth-run/mrth-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mrth-run/mrth-api/pkg/middleware/requestid"
	"github.com/mrth-run/mrth-api/pkg/storage"
)

// @title MRTH API
// @version 1.0.0
// @description Marathon discovery, registration schedule and running leaderboard API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.RacesTTL, logr, true)
	}

	raceRepo := repository.NewRaceRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	runRecordRepo := repository.NewRunRecordRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	raceService := service.NewRaceService(raceRepo, cacheService, validate, logr, cfg.Cache.RegionsTTL)
	scheduleService := service.NewScheduleService(raceRepo, logr, cfg.Schedule.UrgentWithinHours)
	postService := service.NewPostService(postRepo, validate, logr)
	dashboardService := service.NewDashboardService(raceRepo, postRepo, runRecordRepo, logr)
	exportService := service.NewExportService(raceRepo, logr, cfg.Exports.Enabled)

	localStorage, err := storage.NewLocalStorage(cfg.Ranking.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Ranking.SignedURLSecret, cfg.Ranking.SignedURLTTL)
	visionClient := ocr.NewVisionClient(cfg.Ranking.VisionURL, cfg.Ranking.VisionAPIKey, cfg.Ranking.VisionTimeout)
	rankingService := service.NewRankingService(
		runRecordRepo,
		service.NewScreenshotStore(localStorage),
		signer,
		visionClient,
		metricsService,
		validate,
		logr,
		cfg.Ranking,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ranking.Enabled {
		rankingService.StartWorkers(ctx)
		defer rankingService.StopWorkers()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	raceHandler := handler.NewRaceHandler(raceService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	postHandler := handler.NewPostHandler(postService)
	rankingHandler := handler.NewRankingHandler(rankingService)
	authHandler := handler.NewAuthHandler(authService)
	adminRaceHandler := handler.NewAdminRaceHandler(raceService, exportService)
	adminPostHandler := handler.NewAdminPostHandler(postService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, metricsService)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/races", raceHandler.List)
		api.GET("/races/featured", raceHandler.Featured)
		api.GET("/races/:id", raceHandler.Get)
		api.GET("/regions", raceHandler.Regions)

		api.GET("/schedule/weekly", scheduleHandler.Weekly)
		api.GET("/schedule/urgent", scheduleHandler.Urgent)

		api.GET("/posts", postHandler.List)
		api.GET("/posts/:slug", postHandler.GetBySlug)

		api.GET("/ranking", rankingHandler.Leaderboard)
		api.POST("/ranking/upload", rankingHandler.Upload)
		api.GET("/ranking/records/:id", rankingHandler.Get)
		api.POST("/ranking/confirm", rankingHandler.Confirm)
		api.GET("/ranking/leaderboard", rankingHandler.Leaderboard)
		api.GET("/ranking/screenshots/:token", rankingHandler.Screenshot)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/auth/login", authHandler.Login)
		admin.POST("/auth/refresh", authHandler.Refresh)

		secured := admin.Group("", internalmiddleware.JWT(authService))
		secured.GET("/dashboard", dashboardHandler.Summary)
		secured.GET("/metrics", dashboardHandler.Metrics)

		secured.GET("/races", adminRaceHandler.List)
		secured.GET("/races/export", adminRaceHandler.Export)
		secured.GET("/races/:id", adminRaceHandler.Get)
		secured.PUT("/races/:id", adminRaceHandler.Update)
		secured.DELETE("/races/:id", adminRaceHandler.Delete)

		secured.GET("/posts", adminPostHandler.List)
		secured.POST("/posts", adminPostHandler.Create)
		secured.PUT("/posts/:id", adminPostHandler.Update)
		secured.DELETE("/posts/:id", adminPostHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
