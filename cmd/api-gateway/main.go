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
	"go.uber.org/zap"

	_ "github.com/noah-isme/univ-academics-api/api/swagger"
	"github.com/noah-isme/univ-academics-api/internal/handler"
	internalmiddleware "github.com/noah-isme/univ-academics-api/internal/middleware"
	"github.com/noah-isme/univ-academics-api/internal/models"
	"github.com/noah-isme/univ-academics-api/internal/repository"
	"github.com/noah-isme/univ-academics-api/internal/service"
	"github.com/noah-isme/univ-academics-api/pkg/cache"
	"github.com/noah-isme/univ-academics-api/pkg/config"
	"github.com/noah-isme/univ-academics-api/pkg/database"
	"github.com/noah-isme/univ-academics-api/pkg/export"
	"github.com/noah-isme/univ-academics-api/pkg/grading"
	"github.com/noah-isme/univ-academics-api/pkg/jobs"
	"github.com/noah-isme/univ-academics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/univ-academics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/univ-academics-api/pkg/middleware/requestid"
	"github.com/noah-isme/univ-academics-api/pkg/storage"
)

// @title University Academics API
// @version 1.0.0
// @description Exam results, grading, statistics and report cards
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	table, err := grading.TableByName(cfg.Grading.Table)
	if err != nil {
		return fmt.Errorf("grading table: %w", err)
	}
	calc, err := grading.NewCalculator(table)
	if err != nil {
		return fmt.Errorf("grading table: %w", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	deps := map[string]handler.Pinger{"postgres": db, "redis": nil}

	var cacheRepo service.CacheRepository
	if cfg.Statistics.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, logr)
			deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Statistics.CacheTTL, logr, cacheRepo != nil)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	resultRepo := repository.NewResultRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	statsSvc := service.NewStatisticsService(examRepo, resultRepo, cacheSvc, metrics, cfg.Statistics.CacheTTL, logr)
	resultSvc := service.NewResultService(resultRepo, studentRepo, examRepo, subjectRepo, statsSvc, calc, metrics, validate, logr)
	examSvc := service.NewExamService(examRepo, subjectRepo, statsSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, examRepo, statsSvc, validate, logr)
	cardSvc := service.NewReportCardService(resultRepo, studentRepo, examRepo, calc, metrics, cfg.Reports, logr)
	bulkSvc := service.NewBulkReportService(studentRepo, resultRepo, examRepo, cardSvc, cfg.Reports.BulkConcurrency, logr)
	exportSvc := service.NewExportService(resultRepo, examRepo, store, signer, calc,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
		logr, export.NewCSVExporter(), export.NewPDFExporter())
	attendanceSvc := service.NewAttendanceService(attendanceRepo, subjectRepo, service.AttendanceConfig{
		DefaultStatus: models.AttendanceStatus(cfg.Attendance.DefaultStatus),
		HistoryLimit:  cfg.Attendance.HistoryLimit,
	}, validate, logr)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})

	cleanup := jobs.NewQueue("archive-cleanup", func(_ context.Context, job jobs.Job) error {
		removed, err := exportSvc.Cleanup(0)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logr.Info("expired archives removed", zap.String("job_id", job.ID), zap.Int("files", len(removed)))
		}
		return nil
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	cleanup.Start(ctx)
	defer cleanup.Stop()
	cleanup.Every(ctx, cfg.Reports.CleanupInterval, func(t time.Time) jobs.Job {
		return jobs.Job{ID: t.UTC().Format("20060102T150405"), Type: "archive-cleanup"}
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, deps)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	r.GET("/metrics/snapshot", ops.Snapshot)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Results:    handler.NewResultHandler(resultSvc),
		Exams:      handler.NewExamHandler(examSvc, statsSvc, resultSvc, exportSvc),
		Subjects:   handler.NewSubjectHandler(subjectSvc, examSvc),
		Reports:    handler.NewReportHandler(cardSvc, bulkSvc, exportSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
	}, internalmiddleware.JWT(authSvc), internalmiddleware.RequireStaff())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("grading_table", calc.TableName()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
