package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/job"
	"github.com/dicoevent/dicoevent/internal/notifications"
	"github.com/dicoevent/dicoevent/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	WorkerID     string
	PollInterval time.Duration
	Concurrency  int
	LockTTL      time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	metrics  *observability.JobMetrics
	prom     *observability.Prom
	logger   *slog.Logger
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, metrics *observability.JobMetrics, prom *observability.Prom, logger *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		prom:     prom,
		logger:   logger,
	}
}

// Run polls for jobs until ctx is cancelled. Each goroutine claims and
// processes independently; SKIP LOCKED in the claim keeps them from
// colliding.
func (w *Worker) Run(ctx context.Context) error {
	done := make(chan struct{}, w.cfg.Concurrency)

	for i := 0; i < w.cfg.Concurrency; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			w.loop(ctx)
		}()
	}

	// one housekeeping loop per process, not per goroutine
	go w.requeueLoop(ctx)

	for i := 0; i < w.cfg.Concurrency; i++ {
		<-done
	}

	w.logger.Info("worker stopped", "worker_id", w.cfg.WorkerID)
	return nil
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.logger.Error("process job", "error", err)
					break
				}

				// drain the queue before sleeping again
				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) requeueLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LockTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)

			if err != nil {
				w.logger.Error("requeue stale jobs", "error", err)
				continue
			}

			if n > 0 {
				w.logger.Warn("requeued stale jobs", "count", n)
			}
		}
	}
}
