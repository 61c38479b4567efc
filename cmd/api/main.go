package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/college-portal-api/api/swagger"
	"github.com/campushq/college-portal-api/internal/handler"
	"github.com/campushq/college-portal-api/internal/middleware"
	"github.com/campushq/college-portal-api/internal/models"
	"github.com/campushq/college-portal-api/internal/repository"
	"github.com/campushq/college-portal-api/internal/service"
	"github.com/campushq/college-portal-api/pkg/cache"
	"github.com/campushq/college-portal-api/pkg/config"
	"github.com/campushq/college-portal-api/pkg/database"
	"github.com/campushq/college-portal-api/pkg/jobs"
	"github.com/campushq/college-portal-api/pkg/logger"
	corsmiddleware "github.com/campushq/college-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/college-portal-api/pkg/middleware/requestid"
	"github.com/campushq/college-portal-api/pkg/storage"
)

// @title College Portal API
// @version 1.0.0
// @description Grade-card computation and export service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, logr)

	batchRepo := repository.NewBatchRepository(db)
	examRepo := repository.NewExamRepository(db)
	gradeCardRepo := repository.NewGradeCardRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	batchLock := service.NewBatchLock(redisClient, cfg.Grading.LockTTL, logr)
	gradeCardSvc := service.NewGradeCardService(batchRepo, examRepo, gradeCardRepo, batchLock, validate, logr)

	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(gradeCardSvc, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, metricsSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("grade-exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})

	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exportSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	gradeCardHandler := handler.NewGradeCardHandler(gradeCardSvc, metricsSvc)
	exportHandler := handler.NewExportHandler(exportJobSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg.APIPrefix, tokenSvc, gradeCardHandler, exportHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerRoutes(r *gin.Engine, apiPrefix string, tokenSvc *service.TokenService, gradeCardHandler *handler.GradeCardHandler, exportHandler *handler.ExportHandler) {
	// the signed token in the path is the download capability, so this
	// route stays outside the bearer-token group
	r.GET(apiPrefix+"/grade-card/exports/download/:token", exportHandler.Download)

	api := r.Group(apiPrefix)
	api.Use(middleware.JWT(tokenSvc))

	staffOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff)

	gradeCard := api.Group("/grade-card")
	{
		gradeCard.POST("/calculate-external", staffOnly, gradeCardHandler.CalculateExternal)
		gradeCard.POST("/generate-grade-details", staffOnly, gradeCardHandler.GenerateGradeDetails)
		gradeCard.POST("/exports", staffOnly, exportHandler.Create)
		gradeCard.GET("/exports/:id", staffOnly, exportHandler.Status)
		gradeCard.GET("/:studentId", middleware.RBAC("SUPERADMIN", "ADMIN", "STAFF", "SELF"), gradeCardHandler.StudentCard)
	}
}
