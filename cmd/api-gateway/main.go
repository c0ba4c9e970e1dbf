package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bhoomi-portal/land-registry-api/api/swagger"
	"github.com/bhoomi-portal/land-registry-api/internal/repository"
	"github.com/bhoomi-portal/land-registry-api/internal/router"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	"github.com/bhoomi-portal/land-registry-api/pkg/cache"
	"github.com/bhoomi-portal/land-registry-api/pkg/config"
	"github.com/bhoomi-portal/land-registry-api/pkg/database"
	"github.com/bhoomi-portal/land-registry-api/pkg/export"
	"github.com/bhoomi-portal/land-registry-api/pkg/jobs"
	"github.com/bhoomi-portal/land-registry-api/pkg/logger"
	"github.com/bhoomi-portal/land-registry-api/pkg/storage"
)

// @title Bhoomi Land Registry API
// @version 1.0.0
// @description Land-records administration portal backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, verification cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	documentStorage, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}
	certificateStorage, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init certificate storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	mutationRepo := repository.NewMutationRepository(db)

	validate := validator.New()
	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "land-registry-api",
	})
	propertyService := service.NewPropertyService(propertyRepo, auditRepo, validate, logr)
	documentService := service.NewDocumentService(documentRepo, propertyRepo, documentStorage, signer, auditRepo, cfg.Documents.MaxFileSizeBytes, logr)
	verificationService := service.NewVerificationService(propertyRepo, documentRepo, mutationRepo, redisClient, cfg.Verification.CacheTTL, auditRepo, logr)
	reportService := service.NewReportService(propertyRepo, documentRepo, mutationRepo, export.NewCSVExporter(), logr)

	certificateWorker := service.NewCertificateWorker(mutationRepo, propertyRepo, userRepo, export.NewPDFExporter(), certificateStorage, logr)
	certificateQueue := jobs.NewQueue("certificates", certificateWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Certificates.WorkerConcurrency,
		MaxRetries: cfg.Certificates.WorkerRetries,
		Logger:     logr,
	})
	certificateService := service.NewCertificateService(mutationRepo, certificateQueue, certificateStorage, logr)

	mutationService := service.NewMutationService(mutationRepo, propertyRepo, userRepo, auditRepo, certificateService, service.FeeSchedule{
		StampDutyRate:       cfg.Fees.StampDutyRate,
		RegistrationFeeRate: cfg.Fees.RegistrationFeeRate,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	certificateQueue.Start(ctx)
	defer certificateQueue.Stop()

	engine, err := router.New(router.Dependencies{
		Auth:           authService,
		Properties:     propertyService,
		Documents:      documentService,
		Mutations:      mutationService,
		Certificates:   certificateService,
		Verification:   verificationService,
		Reports:        reportService,
		Metrics:        metricsService,
		Logger:         logr,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		APIPrefix:      cfg.APIPrefix,
		Ready: func() error {
			return db.Ping()
		},
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to build router", "error", err)
	}

	if cfg.Env != config.EnvProduction {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}
