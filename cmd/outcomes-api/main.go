package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-outcomes-api/api/swagger"
	"github.com/noah-isme/course-outcomes-api/internal/handler"
	"github.com/noah-isme/course-outcomes-api/internal/middleware"
	"github.com/noah-isme/course-outcomes-api/internal/repository"
	"github.com/noah-isme/course-outcomes-api/internal/service"
	"github.com/noah-isme/course-outcomes-api/pkg/cache"
	"github.com/noah-isme/course-outcomes-api/pkg/config"
	"github.com/noah-isme/course-outcomes-api/pkg/database"
	"github.com/noah-isme/course-outcomes-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-outcomes-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-outcomes-api/pkg/middleware/requestid"
)

// @title Course Outcomes API
// @version 1.0.0
// @description Course grades, learning outcome attainment and program outcome achievement
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
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Achievement.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, achievement cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Achievement.CacheTTL, logr, cfg.Achievement.CacheEnabled && redisClient != nil)

	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	scores := repository.NewScoreRepository(db)
	weights := repository.NewWeightRepository(db)
	programs := repository.NewProgramOutcomeRepository(db)

	validate := service.NewValidator()
	snapshots := service.NewSnapshotLoader(courses, enrollments, scores, weights, programs, metrics)
	gradebookSvc := service.NewGradebookService(snapshots, logr)
	achievementSvc := service.NewAchievementService(snapshots, cacheSvc, metrics, logr, cfg.Achievement.ComputeTimeout, cfg.Achievement.CacheTTL)
	scoreSvc := service.NewScoreService(scores, courses, enrollments, achievementSvc, validate, logr)
	weightSvc := service.NewWeightService(weights, courses, programs, achievementSvc, validate, logr)
	exportSvc := service.NewExportService(achievementSvc, gradebookSvc, cfg.Export.Title, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ResponseMeta())

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Gradebook:   handler.NewGradebookHandler(gradebookSvc, exportSvc),
		Achievement: handler.NewAchievementHandler(achievementSvc, exportSvc),
		Scores:      handler.NewScoreHandler(scoreSvc),
		Weights:     handler.NewWeightHandler(weightSvc),
		Metrics:     handler.NewMetricsHandler(metrics, db, cacheSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "cache", cacheSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
