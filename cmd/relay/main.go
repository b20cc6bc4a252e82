package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hookbridge/hookbridge/common/logging"
	"github.com/hookbridge/hookbridge/internal/config"
	"github.com/hookbridge/hookbridge/internal/forwarder"
	"github.com/hookbridge/hookbridge/internal/handlers"
	"github.com/hookbridge/hookbridge/internal/ratelimit"
	"github.com/hookbridge/hookbridge/internal/server"
	"github.com/hookbridge/hookbridge/internal/service"
	"github.com/hookbridge/hookbridge/pkg/redact"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("relay"))
	logging.SetDefault(logger)

	slog.Info("Starting relay service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Targets are logged redacted: the callback URLs carry their
	// authorization in the query string.
	slog.Info("Forwarding targets configured",
		slog.String("stable_url", redact.URL(cfg.Targets.StableURL)),
		slog.String("canary_url", redact.URL(cfg.Targets.CanaryURL)),
		slog.Bool("fallback_enabled", cfg.Forward.FallbackEnabled),
		slog.Int("max_attempts", cfg.Forward.MaxAttempts),
	)
	if !cfg.Targets.StableSet() && !cfg.Targets.CanarySet() {
		slog.Error("No forwarding target configured; deliveries will be acknowledged and dropped")
	}

	// Initialize rate limiter
	var rateLimiter ratelimit.RateLimiter
	if cfg.Redis.Enabled && cfg.RateLimit.Enabled {
		limiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
		)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Redis rate limiter: %v", err)
			log.Println("Continuing without rate limiting")
			rateLimiter = &ratelimit.NoOpRateLimiter{}
		} else {
			rateLimiter = limiter
			log.Printf("Rate limiting enabled: %d requests per %s", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	} else {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
		log.Println("Rate limiting disabled")
	}
	defer rateLimiter.Close()

	// Wire the pipeline
	fwd := forwarder.New(cfg.Forward, logger)
	relayService := service.NewRelayService(cfg.Targets, fwd, logger)
	handler := handlers.NewRelayHandler(relayService, rateLimiter, logger, cfg.Server.MaxBodySize)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Relay service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
