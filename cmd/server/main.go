package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-event-mock-service/internal/infrastructure/config"
	"flight-event-mock-service/internal/infrastructure/container"
	"flight-event-mock-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("INFO").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Flight Event Mock Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := container.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize service", "error", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.HTTPHandler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	app.Close(shutdownCtx)
	log.Info("Flight Event Mock Service stopped")
}
