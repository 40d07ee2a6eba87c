// Package main is the entry point for the BadgePress server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"badgepress/internal/batch"
	"badgepress/internal/cache"
	"badgepress/internal/config"
	"badgepress/internal/database"
	"badgepress/internal/designer"
	"badgepress/internal/handlers"
	"badgepress/internal/metrics"
	"badgepress/internal/middleware"
	"badgepress/internal/router"
	"badgepress/internal/storage"
	"badgepress/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache for rendered artifacts).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	renderCache := cache.NewRenderCache(valkeyClient, cache.DefaultRenderTTL)

	// Initialize data stores.
	templateStore := store.NewTemplateStore(db)
	eventStore := store.NewEventStore(db)
	registrantStore := store.NewRegistrantStore(db)
	assetStore := store.NewAssetStore(db)
	printLogStore := store.NewPrintLogStore(db)

	// Connect to S3-compatible object storage (optional — the designer
	// and batch pipeline run without it, painting placeholders).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured — asset uploads disabled")
	}

	// The image source feeds uploaded assets into the render pipeline.
	imageSource := storage.NewImageSource(storageClient, assetStore)

	// Prometheus metrics, served on /metrics.
	m := metrics.New()

	// Designer session manager; idle sessions expire on their own.
	sessions := designer.NewManager(designer.DefaultSessionTTL)
	defer sessions.Stop()

	// Batch generator: templates + registrants in, PDF or PNG zip out.
	generator := batch.New(store.NewData(db), imageSource, renderCache, printLogStore, m)

	// Rate limiter for the expensive surfaces (uploads, batch runs).
	limiter := middleware.NewRateLimiter(30, time.Minute)
	defer limiter.Stop()

	api := handlers.NewAPI(templateStore, eventStore, registrantStore, assetStore,
		printLogStore, sessions, generator, storageClient, renderCache, imageSource, m)

	// Set up the Chi router with all middleware and routes.
	r := router.New(api, limiter)

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must accommodate batch runs that render hundreds of
	// badges at print scale (typically a few seconds, up to a minute).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
