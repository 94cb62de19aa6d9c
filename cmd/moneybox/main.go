// Package main is the entry point for the Moneybox catalog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneybox/internal/cache"
	"moneybox/internal/catalog"
	"moneybox/internal/config"
	"moneybox/internal/database"
	"moneybox/internal/handlers"
	"moneybox/internal/media"
	"moneybox/internal/middleware"
	"moneybox/internal/router"
	"moneybox/internal/storage"
	"moneybox/internal/store"
)

func main() {
	started := time.Now()

	// Load configuration from environment variables (and .env if present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text at debug level in development, JSON otherwise.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
		"images", cfg.ImageBackend,
		"cache", cfg.CacheEnabled,
	)
	if cfg.AdminKeyHash == "" {
		slog.Warn("ADMIN_KEY_HASH not set, mutating routes are unauthenticated")
	}

	// Catalog persistence.
	var (
		catalogStore store.CatalogStore
		changeLog    *store.ChangeLogStore
		db           *sql.DB
	)
	switch cfg.StoreBackend {
	case "postgres":
		db, err = database.Connect(cfg.DSN())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		catalogStore = store.NewPostgresStore(db, store.DefaultCatalogKey)
		changeLog = store.NewChangeLogStore(db)
	default:
		fs, err := store.NewFileStore(cfg.DataFile)
		if err != nil {
			slog.Error("failed to open catalog file", "error", err)
			os.Exit(1)
		}
		slog.Info("catalog file store", "path", fs.Path())
		catalogStore = fs
	}

	// Optional Valkey cache of the serialized catalog.
	var (
		docCache    handlers.DocumentCache
		cachePinger handlers.Pinger
	)
	svcOpts := []catalog.Option{}
	if cfg.CacheEnabled {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		catalogCache := cache.NewCatalogCache(valkeyClient, store.DefaultCatalogKey, cfg.CacheTTL)
		docCache = catalogCache
		cachePinger = catalogCache
		svcOpts = append(svcOpts, catalog.WithInvalidator(catalogCache))
	}
	if changeLog != nil {
		svcOpts = append(svcOpts, catalog.WithChangeRecorder(changeLog))
	}

	svc := catalog.NewService(catalogStore, svcOpts...)

	// Image storage.
	var (
		backend   storage.Backend
		uploadDir string
	)
	switch cfg.ImageBackend {
	case "s3":
		s3Backend, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		backend = s3Backend
	default:
		local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadsURL())
		if err != nil {
			slog.Error("failed to initialize upload directory", "error", err)
			os.Exit(1)
		}
		backend = local
		uploadDir = local.Dir()
	}

	checks := map[string]handlers.Pinger{
		"database": svc,
		"images":   backend,
		"cache":    cachePinger,
	}

	var changes *handlers.Changes
	if changeLog != nil {
		changes = handlers.NewChanges(changeLog)
	}

	general := middleware.NewRateLimiter("general", cfg.RateLimitGeneral, cfg.RateLimitWindow)
	defer general.Stop()
	write := middleware.NewRateLimiter("write", cfg.RateLimitWrite, cfg.RateLimitWindow)
	defer write.Stop()

	r := router.New(router.Deps{
		Catalog:      handlers.NewCatalog(svc, docCache),
		Images:       handlers.NewImages(media.NewService(backend, cfg.MaxUploadBytes)),
		Health:       handlers.NewHealth(started, checks),
		Changes:      changes,
		General:      general,
		Write:        write,
		AdminKeyHash: cfg.AdminKeyHash,
		CORSOrigins:  cfg.CORSOrigins,
		UploadDir:    uploadDir,
	})

	// Create the HTTP server with sensible timeouts. ReadTimeout covers a
	// full-size base64 image upload on a slow link.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}
