// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api serves the Bookshelf catalog over HTTP.
//
// Startup connects Postgres and Redis, applies pending migrations, picks the
// cover backend (local disk or S3) and wires the handlers. Any failure before
// the listener is up exits with status 1. SIGINT or SIGTERM drains in-flight
// requests for up to constants.ShutdownTimeout.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/bookshelf/internal/api"
	"github.com/taibuivan/bookshelf/internal/core/book"
	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/config"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/migration"
	pgstore "github.com/taibuivan/bookshelf/internal/platform/postgres"
	redisstore "github.com/taibuivan/bookshelf/internal/platform/redis"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
	"github.com/taibuivan/bookshelf/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("asset_backend", cfg.AssetBackend),
	)

	// Misconfiguration should fail fast rather than hang.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()
	prometheus.MustRegister(pgstore.NewStatsCollector(pool))

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, migration.Source(cfg.MigrationPath), log), "run migrations")

	// ── 5. Cover Store ────────────────────────────────────────────────────
	assets, images, err := newAssetStore(startupCtx, cfg, log)
	must(log, err, "initialize asset store")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	authHandler := auth.NewHandler(auth.NewService(auth.NewUserRepository(pool), jwtSvc))

	bookService := book.NewService(
		book.NewPostgresRepository(pool),
		assets,
		cover.NewTranscoder(cover.Options{
			MaxWidth:  cfg.ImageMaxWidth,
			MaxHeight: cfg.ImageMaxHeight,
			Quality:   cfg.ImageQuality,
		}),
		book.NewRedisTopRatedCache(rdb, cfg.TopRatedCacheTTL),
		book.Settings{PublicBaseURL: cfg.PublicBaseURL, AssetTimeout: cfg.AssetTimeout},
		log,
	)
	bookHandler := book.NewHandler(bookService, book.UploadSettings{
		StagingDir:     cfg.StagingDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		Database: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		Cache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		Assets:   bookService.CheckAssets,
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	// serverCtx ends on SIGINT/SIGTERM and stops the rate limiter sweeper too.
	serverCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Books:     bookHandler,
		Images:    images,
		Metrics:   promhttp.Handler(),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-serverCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}
	stop()

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName), slog.String("version", constants.AppVersion))
}

// newAssetStore selects the configured cover backend. The returned handler
// serves covers locally and is nil when they live in object storage.
func newAssetStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (cover.AssetStore, http.Handler, error) {
	switch cfg.AssetBackend {
	case config.AssetBackendS3:
		client, err := cover.NewS3Client(ctx, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, nil, err
		}
		log.Info("asset_store_selected", slog.String("backend", "s3"), slog.String("bucket", cfg.S3Bucket))
		return cover.Instrument(cover.NewS3Store(client, cfg.S3Bucket, log)), nil, nil

	default:
		disk, err := cover.NewDiskStore(cfg.AssetDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("asset_store_selected", slog.String("backend", "disk"), slog.String("dir", disk.Dir()))
		return cover.Instrument(disk), api.ImageServer(disk.Dir()), nil
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
