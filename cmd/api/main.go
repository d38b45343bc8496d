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

	"github.com/joho/godotenv"

	"equipment-maintenance-api/internal/config"
	"equipment-maintenance-api/internal/database"
	"equipment-maintenance-api/internal/handler"
	"equipment-maintenance-api/internal/lifecycle"
	"equipment-maintenance-api/internal/middleware"
	"equipment-maintenance-api/internal/repository"
	"equipment-maintenance-api/internal/router"
	"equipment-maintenance-api/internal/service"
)

func main() {
	// Load .env if present, then configuration from the environment
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize storage
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	logger := log.Default()

	// Initialize repository and the lifecycle service
	repo := repository.NewEquipmentRepository(db)

	randSeed := cfg.Seed.RandSeed
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	picker := lifecycle.NewDayPicker(randSeed)

	svc := service.NewEquipmentService(repo, picker, logger)

	// Seed an empty store with demo records
	if cfg.Seed.Enabled {
		seeded, err := svc.SeedIfEmpty(context.Background(), cfg.Seed.Count)
		if err != nil {
			log.Fatalf("Failed to seed equipment store: %v", err)
		}
		if seeded > 0 {
			logger.Printf("Seeded empty store with %d demo records", seeded)
		}
	}

	// Initialize handler
	h := handler.NewEquipmentHandler(svc, logger, cfg.DueSoonHorizonDays)

	// Setup router with security configuration
	r := router.NewRouter(h, cfg)

	// Wrap router with logging middleware
	loggingMW := middleware.NewLoggingMiddleware(logger)
	finalHandler := loggingMW.LogRequests(r)

	// Configure server with security settings
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        finalHandler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Channel to listen for interrupt signal to gracefully shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %d (storage driver: %s)", cfg.Port, cfg.Storage.Driver)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until we receive a signal
	<-done
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Security.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	} else {
		log.Println("Server exited gracefully")
	}
}
