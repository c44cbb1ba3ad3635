package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"avias-service/internal/infrastructure/config"
	"avias-service/internal/interface/repository"
	"avias-service/internal/interface/web"
	"avias-service/internal/usecase"
	"avias-service/pkg/logger"
	"avias-service/pkg/metrics"
	"avias-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger, teeing to the configured log folder
	if err := os.MkdirAll(cfg.LogFolder, 0o755); err != nil {
		logger.NewLogger().Fatal("Failed to create log folder", "error", err)
	}
	log := logger.NewFileLogger(cfg.LogFolder)
	log.Info("Starting Avias Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appMetrics := metrics.NewMetrics("avias")

	// Wire the engine: parser -> ingestor -> snapshot -> ranker
	snapshotRepo := repository.NewTSVSnapshotRepository(cfg.TmpFolder, log)
	fareParser := utils.NewFareParser(log)
	ingestor := usecase.NewIngestor(fareParser, snapshotRepo, log, appMetrics)
	ranker := usecase.NewRanker(snapshotRepo, log, appMetrics)

	// Build the route options once at startup; /reingest rebuilds them.
	optionsCache := web.NewOptionsCache()
	optionsCache.Set(ingestor.Ingest(ctx, cfg.DataFolder))

	// Set up HTTP server
	mux := http.NewServeMux()
	web.NewHandler(ingestor, ranker, optionsCache, cfg.DataFolder, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
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

	log.Info("Avias Service stopped")
}
