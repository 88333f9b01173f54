package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/adicipta/procure-api/docs"
	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/config"
	"github.com/adicipta/procure-api/internal/database"
	"github.com/adicipta/procure-api/internal/erp"
	"github.com/adicipta/procure-api/internal/http/handler"
	"github.com/adicipta/procure-api/internal/http/middleware"
	"github.com/adicipta/procure-api/internal/http/router"
	"github.com/adicipta/procure-api/internal/jobs"
	"github.com/adicipta/procure-api/internal/logger"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/internal/service"
	"github.com/adicipta/procure-api/internal/storage"
)

// @title Procurement API
// @version 1.0
// @description Purchase order lifecycle and financial posting service
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token, e.g. "Bearer {token}"
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	switch cfg.App.Environment {
	case "production":
		docs.SwaggerInfo.Host = "api.procure.adicipta.com"
	case "staging":
		docs.SwaggerInfo.Host = "api-staging.procure.adicipta.com"
	default:
		docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	}

	ctx := context.Background()
	cfg, err = config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("resolving secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}

	store, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	erpClient, err := erp.NewClient(&cfg.ERP, log)
	if err != nil {
		// A broken ERP link must not keep procurement down
		log.Warn("erp connection unavailable, continuing without sync", zap.Error(err))
		erpClient = nil
	}

	// Repositories
	sequenceRepo := repository.NewDocumentSequenceRepository(db)
	soRepo := repository.NewSalesOrderRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	postingRepo := repository.NewPostingRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	auditService := service.NewAuditLogService(auditRepo, log)
	sequenceService := service.NewSequenceService(sequenceRepo, log)
	reconciler := service.NewReconcilerService(soRepo, log)
	postingService := service.NewPostingService(postingRepo, sequenceService, log)
	poService := service.NewPurchaseOrderService(db, poRepo, soRepo, reconciler, sequenceService, postingService, auditService, log)
	paymentService := service.NewPaymentService(db, paymentRepo, poRepo, lookupRepo, sequenceService, postingService, auditService, store, log)
	soService := service.NewSalesOrderService(soRepo, reconciler, erpClient, auditService, log)

	// Auth + middleware
	jwtValidator, err := auth.NewJWTValidator(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initializing token validator: %w", err)
	}
	authMiddleware := auth.NewMiddleware(jwtValidator, cfg.APIKey.Key, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	poHandler := handler.NewPurchaseOrderHandler(poService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	soHandler := handler.NewSalesOrderHandler(soService, log)
	sequenceHandler := handler.NewSequenceHandler(sequenceService, log)
	auditHandler := handler.NewAuditHandler(auditService, log)

	rt := router.NewRouter(cfg, log, db, erpClient,
		authMiddleware, rateLimiter,
		poHandler, paymentHandler, soHandler, sequenceHandler, auditHandler)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.EnableScheduler {
		scheduler = jobs.NewScheduler(log)
		if erpClient.IsEnabled() {
			if err := jobs.RegisterERPSyncJob(scheduler, soService, log,
				cfg.Jobs.ERPSyncCron, cfg.Jobs.ERPSyncTimeoutDuration(), cfg.Jobs.ERPSyncOnStartup); err != nil {
				return fmt.Errorf("registering erp sync job: %w", err)
			}
		}
		if err := jobs.RegisterAuditRetentionJob(scheduler, auditService, log,
			cfg.Jobs.AuditRetentionCron, cfg.Jobs.AuditRetentionDays); err != nil {
			return fmt.Errorf("registering audit retention job: %w", err)
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.App.Environment),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if err := erpClient.Close(); err != nil {
			log.Warn("closing erp connection", zap.Error(err))
		}
	}

	log.Info("server stopped gracefully")
	return nil
}
