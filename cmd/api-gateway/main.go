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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/feedback-analytics-api/api/swagger"
	"github.com/noah-isme/feedback-analytics-api/internal/handler"
	"github.com/noah-isme/feedback-analytics-api/internal/middleware"
	"github.com/noah-isme/feedback-analytics-api/internal/repository"
	"github.com/noah-isme/feedback-analytics-api/internal/service"
	"github.com/noah-isme/feedback-analytics-api/pkg/cache"
	"github.com/noah-isme/feedback-analytics-api/pkg/config"
	"github.com/noah-isme/feedback-analytics-api/pkg/database"
	"github.com/noah-isme/feedback-analytics-api/pkg/export"
	"github.com/noah-isme/feedback-analytics-api/pkg/jobs"
	"github.com/noah-isme/feedback-analytics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/feedback-analytics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/feedback-analytics-api/pkg/middleware/requestid"
	"github.com/noah-isme/feedback-analytics-api/pkg/storage"
)

// @title Feedback Analytics API
// @version 1.0.0
// @description Read-side analytics service deriving statistical views from student feedback snapshots
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Analytics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	feedbackRepo := repository.NewFeedbackRepository(db)
	analyticsSvc := service.NewAnalyticsService(feedbackRepo, cacheSvc, metricsSvc, logr, service.AnalyticsServiceConfig{
		ResponsesPerStudent: cfg.Analytics.ResponsesPerStudent,
		TopFacultyLimit:     cfg.Dashboard.TopFacultyLimit,
	})
	dashboardSvc := service.NewDashboardService(analyticsSvc, feedbackRepo, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL:        cfg.Dashboard.CacheTTL,
		TopFacultyLimit: cfg.Dashboard.TopFacultyLimit,
	})

	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(feedbackRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		exportJobRepo := repository.NewExportJobRepository(db)
		worker := service.NewExportWorker(exportJobRepo, exporter, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exportJobSvc := service.NewExportJobService(exportJobRepo, queue, exporter, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportJobSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	analyticsGroup := api.Group("/analytics")
	{
		analyticsGroup.GET("/overall", analyticsHandler.Overall)
		analyticsGroup.GET("/subjects", analyticsHandler.Subjects)
		analyticsGroup.GET("/subjects/:id", analyticsHandler.SubjectDetail)
		analyticsGroup.GET("/faculty", analyticsHandler.Faculty)
		analyticsGroup.GET("/divisions", analyticsHandler.Divisions)
		analyticsGroup.GET("/lecture-lab", analyticsHandler.LectureLab)
		analyticsGroup.GET("/subject-faculty", analyticsHandler.SubjectFaculty)
		analyticsGroup.GET("/trends/year-department", analyticsHandler.YearDepartmentTrends)
		analyticsGroup.GET("/trends/semester", analyticsHandler.SemesterTrends)
		analyticsGroup.GET("/trends/year-division", analyticsHandler.YearDivisionTrends)
		analyticsGroup.GET("/filters", analyticsHandler.FilterOptions)
		analyticsGroup.GET("/response-rate", analyticsHandler.ResponseRate)
		analyticsGroup.GET("/system", analyticsHandler.System)
	}

	api.GET("/dashboard", dashboardHandler.Summary)

	if exportHandler != nil {
		exportsGroup := api.Group("/exports")
		{
			exportsGroup.POST("", exportHandler.Create)
			exportsGroup.GET("/:id", exportHandler.Status)
			exportsGroup.GET("/download/:token", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
