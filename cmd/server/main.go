package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizformulate/insights-api/internal/catalog"
	"github.com/bizformulate/insights-api/internal/config"
	"github.com/bizformulate/insights-api/internal/db"
	"github.com/bizformulate/insights-api/internal/repository"
	"github.com/bizformulate/insights-api/internal/router"
	"github.com/bizformulate/insights-api/internal/services"
	"github.com/bizformulate/insights-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Framework catalog, with the built-in Business Model Canvas
	frameworkCatalog := catalog.New(database)
	if err := frameworkCatalog.EnsureBuiltins(context.Background()); err != nil {
		logger.Fatal("Failed to ensure built-in frameworks", "error", err)
	}

	// Initialize analysis service
	sessionRepo := repository.NewRepository(database)
	analysisService := services.NewService(sessionRepo, frameworkCatalog, cfg, logger)

	// Setup HTTP router
	handler := router.NewRouter(analysisService, logger)

	// Create HTTP server; generation calls are slow, so the write
	// timeout is generous.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
