package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dicoevent/dicoevent/internal/auth"
	"github.com/dicoevent/dicoevent/internal/cache"
	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/db"
	httpx "github.com/dicoevent/dicoevent/internal/http"
	"github.com/dicoevent/dicoevent/internal/observability"
	"github.com/dicoevent/dicoevent/internal/queue/redisclient"
	"github.com/dicoevent/dicoevent/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	logger := observability.NewLogger(cfg.Env)
	slog.SetDefault(slog.New(observability.NewTraceHandler(logger.Handler())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "dicoevent-api", cfg.OTLPEndpoint)

	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		logger.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	// detail cache falls back to process memory when Redis is unreachable
	var cacheStore cache.Store = cache.NewRedisStore(rdb.Raw())

	if err := rdb.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, detail cache runs in-process", "error", err)
		cacheStore = cache.NewMemoryStore()
	}

	detailCache := cache.NewDetailCache(cacheStore, cfg.DetailCacheTTL)

	posterStore, err := storage.NewPosterStore(ctx, storage.S3Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		PosterURLTTL:    cfg.PosterURLTTL,
	}, logger)

	if err != nil {
		logger.Error("s3 init failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	router := httpx.NewRouter(cfg, httpx.Deps{
		Pool:        pool,
		Registry:    registry,
		Prom:        prom,
		DetailCache: detailCache,
		Posters:     posterStore,
		JWT:         jwtManager,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", "error", err)
	}

	logger.Info("shutdown complete")
}
