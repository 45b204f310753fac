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

	"github.com/romangod6/articles-api/config"
	"github.com/romangod6/articles-api/internal/api"
	"github.com/romangod6/articles-api/internal/metrics"
	"github.com/romangod6/articles-api/internal/storage"
	"github.com/romangod6/articles-api/internal/utils"
	"go.uber.org/zap"
)

const serviceName = "articles-api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage
	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer store.Close()

	// The service keeps running without the table, every query will then fail.
	if err := store.Initialize(context.Background()); err != nil {
		logger.Error("Failed to create table 'articles'", zap.Error(err))
	} else {
		logger.Info("Table 'articles' created or already present")
	}

	recorder, err := metrics.NewRecorder(serviceName)
	if err != nil {
		logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	server := api.NewServer(api.Options{
		Port:         cfg.Server.Port,
		StrictStatus: cfg.Server.StrictStatus,
	}, store, logger, recorder)

	// Start the API server
	go func() {
		logger.Info("Starting API server", zap.Int("port", cfg.Server.Port), zap.Bool("strict_status", cfg.Server.StrictStatus))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	var diag *http.Server
	if cfg.Server.DiagPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		diag = &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Server.DiagPort),
			Handler:     mux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("Starting diagnostics server", zap.Int("port", cfg.Server.DiagPort))
			if err := diag.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Diagnostics server stopped", zap.Error(err))
			}
		}()
	}

	// Wait for shutdown
	waitForShutdown(logger, server, diag)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	opts := storage.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		UniqueTitles: cfg.Database.UniqueTitles,
	}

	switch cfg.Database.Driver {
	case "postgres", "postgresql":
		return storage.NewPostgresStore(cfg.DSN(), opts)
	case "sqlite", "sqlite3":
		return storage.NewSQLiteStore(cfg.Database.Path, opts)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func waitForShutdown(logger *zap.Logger, server *api.Server, diag *http.Server) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down...")

	// Graceful server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	}
	if diag != nil {
		if err := diag.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down diagnostics server", zap.Error(err))
		}
	}
	logger.Info("Server shut down gracefully")
}
