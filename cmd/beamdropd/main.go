package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beamdrop/beamdrop/internal/config"
	"github.com/beamdrop/beamdrop/internal/metrics"
	"github.com/beamdrop/beamdrop/internal/router"
	"github.com/beamdrop/beamdrop/internal/server"
	"github.com/beamdrop/beamdrop/internal/session"
	"github.com/beamdrop/beamdrop/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	port := flag.Int("port", 0, "listen port (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting beamdropd",
		"version", version.Version,
		"commit", version.Commit,
	)

	// Load configuration
	var cfg *config.RelayConfig
	if *configPath != "" {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Wire registry, transport, and router. The router sends through the
	// transport and the transport dispatches into the router, so the
	// router is attached after both exist.
	m := metrics.New(nil)

	registry := session.NewRegistry(session.Config{
		SweepInterval:   cfg.Liveness.SweepInterval,
		LivenessTimeout: cfg.Liveness.Timeout,
	}, logger)

	transport := server.NewServer(cfg.Transport, m, logger)
	rt := router.NewRouter(registry, transport, m, logger)
	transport.SetRouter(rt)
	registry.SetEvictHandler(rt.HandleEviction)

	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start session registry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		registry.Stop(shutdownCtx)
	}()

	// Metrics + health server
	metricsMux := http.NewServeMux()
	metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
	metricsMux.Handle("/health", createHealthHandler(registry, transport))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: metricsMux,
	}
	go func() {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Main server: device channel plus optional web client hosting
	mux := http.NewServeMux()
	mux.Handle("/ws", transport)
	if cfg.Static.Dir != "" {
		logger.Info("serving static assets", "dir", cfg.Static.Dir)
		mux.Handle("/", http.FileServer(http.Dir(cfg.Static.Dir)))
	}

	mainServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}
	go func() {
		logger.Info("listening", "addr", mainServer.Addr)
		if err := mainServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	mainServer.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)
	transport.Shutdown()

	logger.Info("beamdropd stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(registry session.Registry, transport *server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := registry.Stats()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:  "healthy",
			Version: version.Version,
			Components: map[string]any{
				"registry": map[string]int{
					"devices": stats.Devices,
					"groups":  stats.Groups,
				},
				"transport": map[string]int{
					"connections": transport.Stats().Connections,
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})
}
