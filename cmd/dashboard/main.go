// cmd/dashboard/main.go

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tripdash/internal/adapter/storage"
	"tripdash/internal/config"
	"tripdash/internal/server"
	"tripdash/internal/server/handlers"
	chartService "tripdash/internal/service/chart"
	"tripdash/internal/service/export"
	"tripdash/internal/service/render"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found or error loading it. Using environment variables.")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Load the dataset once; it is read-only afterwards
	start := time.Now()
	tripStore, err := storage.LoadTripStore(cfg.Dataset.Path, cfg.Dataset.Sheet)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("Loaded %d trips from %s in %s", tripStore.Len(), cfg.Dataset.Path, time.Since(start).Round(time.Millisecond))

	if cfg.Chart.MapboxToken == "" {
		log.Println("MAPBOX_TOKEN not set, map uses token-less tiles")
	}

	// Initialize services
	charts := chartService.NewService(tripStore, chartService.Config{
		Width:       cfg.Chart.Width,
		Height:      cfg.Chart.Height,
		MapboxToken: cfg.Chart.MapboxToken,
		MapZoom:     cfg.Chart.MapZoom,
		MapOpacity:  cfg.Chart.MapOpacity,
	})
	renderer := render.NewRenderer(chartService.BackgroundColor, chartService.FontColor)
	exporter := export.NewExporter(tripStore, cfg.Export.MaxRows)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		handlers.WebSocketConfig{
			WriteWait:      cfg.WebSocket.WriteWait,
			PongWait:       cfg.WebSocket.PongWait,
			PingPeriod:     cfg.WebSocket.PingPeriod,
			MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		},
		charts,
		renderer,
		exporter,
	)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s (%s)", cfg.Server.Addr(), cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
