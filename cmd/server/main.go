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

	"billaudit/internal/analyzer"
	_ "billaudit/internal/analyzer/openai"
	"billaudit/internal/audit"
	"billaudit/internal/config"
	"billaudit/internal/handler"
	"billaudit/internal/repository/postgres"
	"billaudit/internal/router"
	"billaudit/internal/service"
	s3storage "billaudit/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	policyRepo := postgres.NewAuditPolicyRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	if cfg.Audit.SeedOnStartup {
		if _, err := audit.SeedDefaultPolicies(ctx, policyRepo); err != nil {
			return fmt.Errorf("failed to seed audit policies: %w", err)
		}
	}

	// Initialize storage and analyzer
	store, err := s3storage.NewDocumentStore(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	docAnalyzer, err := analyzer.NewFromConfig(&cfg.Analyzer)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	// Initialize audit engine
	var engineOpts []audit.EngineOption
	if cfg.Audit.EnforceDateWindow {
		engineOpts = append(engineOpts, audit.WithDateWindow(time.Now))
	}
	auditor := audit.NewAuditor(policyRepo, audit.NewExtractor(), audit.NewEngine(engineOpts...))

	// Initialize services
	docSvc := service.NewDocumentService(docRepo, store, docAnalyzer, auditor, cfg)
	auditSvc := service.NewAuditService(policyRepo, auditor)
	statsSvc := service.NewStatsService(statsRepo)
	tokenSvc := service.NewTokenService(cfg.Auth)

	// Setup router
	r := router.Setup(cfg, tokenSvc, router.Handlers{
		Document: handler.NewDocumentHandler(docSvc),
		Audit:    handler.NewAuditHandler(auditSvc),
		Stats:    handler.NewStatsHandler(statsSvc),
		Health:   handler.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (auth enabled: %t)", cfg.Server.Port, cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func configureLogging(cfg *config.Config) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	flags := log.LstdFlags | log.LUTC
	if cfg.Log.Level == "debug" {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)
}
