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
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-timetable-api/api/swagger"
	"github.com/noah-isme/exam-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/exam-timetable-api/internal/middleware"
	"github.com/noah-isme/exam-timetable-api/internal/repository"
	"github.com/noah-isme/exam-timetable-api/internal/service"
	"github.com/noah-isme/exam-timetable-api/migrations"
	"github.com/noah-isme/exam-timetable-api/pkg/cache"
	"github.com/noah-isme/exam-timetable-api/pkg/config"
	"github.com/noah-isme/exam-timetable-api/pkg/database"
	"github.com/noah-isme/exam-timetable-api/pkg/jobs"
	"github.com/noah-isme/exam-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-timetable-api/pkg/storage"
)

// @title Exam Timetable API
// @version 1.0.0
// @description Conflict detection and greedy auto-resolution for exam timetables
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

	engine, err := service.NewEngine(cfg.Scheduler)
	if err != nil {
		logr.Sugar().Fatalw("invalid scheduler configuration", "error", err)
	}

	checks := map[string]handler.Pinger{}

	var db *sqlx.DB
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		applied, err := database.Migrate(ctx, db, migrations.FS)
		if err != nil {
			logr.Sugar().Fatalw("failed to apply migrations", "error", err)
		}
		logr.Info("migrations applied", zap.Strings("files", applied))
		checks["postgres"] = handler.PingFunc(db.PingContext)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, detection cache disabled", "error", err)
		} else {
			defer client.Close() //nolint:errcheck
			repo := repository.NewCacheRepository(client)
			cacheRepo = repo
			checks["redis"] = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	var runs service.RunStore = service.NewMemoryRunStore(cfg.Scheduler.RunTTL)
	var branchStore service.BranchStore
	if db != nil {
		runs = repository.NewTimetableRunRepository(db)
		branchStore = repository.NewBranchExamRepository(db)
	}

	timetables := service.NewTimetableService(engine, runs, cacheSvc, metrics, validate, logr, service.TimetableServiceConfig{
		MaxSessions: cfg.Scheduler.MaxSessions,
		RunTTL:      cfg.Scheduler.RunTTL,
		CacheTTL:    cfg.Cache.TTL,
	})
	if err := timetables.ResetDetections(ctx); err != nil {
		logr.Warn("stale detection cache left in place", zap.Error(err))
	}
	timetables.StartPruning(ctx, time.Hour)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare storage", "dir", cfg.Exports.StorageDir, "error", err)
	}
	importer := service.NewImportService(timetables, files, logr, service.ImportConfig{MaxBytes: cfg.Scheduler.UploadMaxBytes})
	branches := service.NewBranchService(branchStore, engine, cfg.Branches.Names, validate, metrics, logr)

	exportHandler := handler.NewExportHandler(nil)
	if db != nil && cfg.Exports.Enabled {
		exportJobs, queue := buildExports(cfg, db, runs, files, validate, metrics, logr)
		queue.Start(ctx)
		defer queue.Stop()
		exportJobs.RecoverPendingJobs(ctx)
		exportJobs.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportJobs)
	} else if cfg.Exports.Enabled {
		logr.Warn("exports disabled: the database is not enabled")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, checks))
	handler.Register(
		r.Group(cfg.APIPrefix),
		handler.NewTimetableHandler(timetables, importer),
		exportHandler,
		handler.NewBranchHandler(branches),
	)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func buildExports(cfg *config.Config, db *sqlx.DB, runs service.RunStore, files *storage.LocalStorage, validate *validator.Validate, metrics *service.MetricsService, logr *zap.Logger) (*service.ExportJobService, *jobs.Queue) {
	repo := repository.NewExportJobRepository(db)
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(runs, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	worker := service.NewExportWorker(repo, exporter, metrics, logr)

	var exportJobs *service.ExportJobService
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnFailure: func(ctx context.Context, job jobs.Job, err error) {
			exportJobs.HandleFailure(ctx, job, err)
		},
	})
	exportJobs = service.NewExportJobService(repo, runs, queue, exporter, validate, metrics, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	return exportJobs, queue
}
