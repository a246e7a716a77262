package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dice205/omr-results-api/api/swagger"
	"github.com/dice205/omr-results-api/internal/handler"
	"github.com/dice205/omr-results-api/internal/middleware"
	"github.com/dice205/omr-results-api/internal/repository"
	"github.com/dice205/omr-results-api/internal/service"
	"github.com/dice205/omr-results-api/pkg/cache"
	"github.com/dice205/omr-results-api/pkg/config"
	"github.com/dice205/omr-results-api/pkg/database"
	"github.com/dice205/omr-results-api/pkg/logger"
	corsmiddleware "github.com/dice205/omr-results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dice205/omr-results-api/pkg/middleware/requestid"
)

// @title OMR Results API
// @version 1.0.0
// @description Listing and detail API over OMR answer-sheet scan results
// @BasePath /
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, list cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	userRepo := repository.NewUserRepository(db)
	sheetRepo := repository.NewAnswerSheetRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	sheetService := service.NewAnswerSheetService(sheetRepo, cacheService, nil, logr)
	exportService := service.NewExportService(sheetService, logr)

	authHandler := handler.NewAuthHandler(authService)
	sheetHandler := handler.NewAnswerSheetHandler(sheetService, exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsService))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	sheets := api.Group("/answer-sheet")
	sheets.Use(middleware.JWT(authService))
	sheets.GET("", sheetHandler.List)
	sheets.GET("/:id", sheetHandler.Get)
	sheets.GET("/:id/export", sheetHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
