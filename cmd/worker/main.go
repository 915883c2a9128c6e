package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/db"
	"github.com/dicoevent/dicoevent/internal/mail"
	"github.com/dicoevent/dicoevent/internal/notifications"
	"github.com/dicoevent/dicoevent/internal/observability"
	"github.com/dicoevent/dicoevent/internal/queue/worker"
	"github.com/dicoevent/dicoevent/internal/repo/postgres"
	"github.com/dicoevent/dicoevent/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logger := observability.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)
	metrics := observability.NewJobMetrics()

	jobsRepo := postgres.NewJobsRepo(pool, prom)
	registrationsRepo := postgres.NewRegistrationsRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	// mail goes out for real only when SMTP credentials are configured
	var notifier notifications.Notifier = notifications.NewLogNotifier()

	if cfg.SMTPUser != "" {
		mailer := mail.NewMailer(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
		notifier = notifications.NewMailNotifier(mailer)
	} else {
		logger.Warn("SMTP not configured, notifications are logged only")
	}

	notifier = notifications.NewProtectedNotifier(notifier, notifications.ProtectedNotifierConfig{})

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID:     workerID,
		PollInterval: time.Second,
		Concurrency:  4,
		LockTTL:      30 * time.Second,
	}, jobsRepo, notifier, metrics, prom, logger)

	sched := scheduler.New(scheduler.Config{
		SweepInterval: cfg.SweepInterval,
		Lead:          cfg.ReminderLead,
		Window:        cfg.SweepWindow,
	}, registrationsRepo, jobsRepo, prom, logger)

	go func() {
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler stopped with error", "error", err)
		}
	}()

	// housekeeping: prune expired refresh tokens once an hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := refreshRepo.DeleteExpired(ctx)

				if err != nil {
					logger.Error("refresh token prune failed", "error", err)
					continue
				}

				if n > 0 {
					logger.Info("pruned expired refresh tokens", "count", n)
				}
			}
		}
	}()

	// metrics endpoint for scraping
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		addr := fmt.Sprintf(":%d", cfg.Port+1)
		logger.Info("worker metrics listening", "addr", addr)

		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	logger.Info("worker starting", "worker_id", workerID, "concurrency", 4)

	if err := w.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "error", err)
	}

	logger.Info("worker shutdown complete")
}
