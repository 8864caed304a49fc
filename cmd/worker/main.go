package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/database"
	"sellmaster/internal/logger"
	syncsvc "sellmaster/internal/sync"
	"sellmaster/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize worker
	creds := credentials.NewGormStore(db.DB)
	links := syncsvc.NewGormLinkRepo(db.DB)
	runs := syncsvc.NewGormRunRepo(db.DB)
	service := syncsvc.NewService(cfg, creds, links, runs, logger)
	w := worker.New(cfg, logger, service)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
