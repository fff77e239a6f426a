package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	_ "invoicebridge/docs"
	"invoicebridge/internal/config"
	"invoicebridge/internal/email/noop"
	sesemail "invoicebridge/internal/email/ses"
	"invoicebridge/internal/handler"
	"invoicebridge/internal/logger"
	"invoicebridge/internal/port"
	"invoicebridge/internal/repository/postgres"
	"invoicebridge/internal/router"
	"invoicebridge/internal/service"
	s3storage "invoicebridge/internal/storage/s3"
)

// @title InvoiceBridge API
// @version 1.0
// @description Imports electronic supplier invoices as purchases.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	if err := logger.Setup(logCfg); err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	txRunner := postgres.NewTxRunner(db)
	reader := postgres.NewImportRepos(db)

	// Initialize storage; without a bucket uploads are not archived
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		log.Warn().Msg("main: S3 bucket not configured, uploads will not be archived")
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = sesemail.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	importSvc := service.NewImportService(txRunner, reader, storage, emailSender, cfg.Import, cfg.S3)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(importSvc, cfg.Import.MaxUploadBytes())
	purchaseH := handler.NewPurchaseHandler(importSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, invoiceH, purchaseH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Msg("main: server starting")
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

	log.Info().Msg("main: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
