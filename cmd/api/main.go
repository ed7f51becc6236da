package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-table/internal/config"
	"price-table/internal/database"
	"price-table/internal/handler"
	"price-table/internal/router"
	"price-table/internal/service"
	"price-table/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting price-table server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the embedded storage database
	db, err := database.Open(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	kv, err := storage.NewSQLiteKV(db)
	if err != nil {
		return fmt.Errorf("failed to initialize key/value store: %w", err)
	}

	// The gateway is built here and injected everywhere it is needed;
	// it is the only handle onto persisted state.
	gateway := storage.NewGateway(kv, logger)

	// Initialize collection managers; each hydrates from storage and
	// fails fast on corrupted data.
	recordService, err := service.NewPriceRecordService(ctx, gateway, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize price record service: %w", err)
	}

	productService, err := service.NewProductService(ctx, gateway, recordService, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize product service: %w", err)
	}

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, recordService, logger)
	recordHandler := handler.NewPriceRecordHandler(recordService, logger)
	backupHandler := handler.NewBackupHandler(gateway, productService, recordService, logger)

	// Initialize router
	mux := router.New(productHandler, recordHandler, backupHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("storage_path", cfg.Storage.Path).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
