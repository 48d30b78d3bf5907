package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/rowgate/rowgate/internal/config"
	"github.com/rowgate/rowgate/internal/configapi"
	"github.com/rowgate/rowgate/internal/db"
	"github.com/rowgate/rowgate/internal/ingestion"
	"github.com/rowgate/rowgate/internal/middleware"
	"github.com/rowgate/rowgate/internal/repository"
	"github.com/rowgate/rowgate/internal/storage"
	"github.com/rowgate/rowgate/internal/validation"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	configRepo := repository.NewUploadConfigurationRepository(conn.Pool)
	storageRepo := repository.NewStorageConfigurationRepository(conn.Pool)
	opRepo := repository.NewUploadOperationRepository(conn.Pool)
	errorRepo := repository.NewIngestionErrorRepository(conn.Pool)

	// Create services
	registry := validation.NewRegistry()
	engine := validation.NewEngine(registry)
	storageService := storage.NewService(cfg.Storage.LocalRoot)
	ingestionService := ingestion.NewService(configRepo, storageRepo, opRepo, errorRepo, engine, storageService)
	configService := configapi.NewService(configRepo, storageRepo, registry)

	// Mount HTTP routes
	mux := http.NewServeMux()
	ingestion.NewHTTPHandler(ingestionService).Register(mux)
	configapi.NewHTTPHandler(configService).Register(mux)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting ingestion server on %s", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
