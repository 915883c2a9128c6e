package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/job"
	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/dicoevent/dicoevent/internal/jobs"
	"github.com/dicoevent/dicoevent/internal/observability"
)

type RegistrationsSource interface {
	RemindersBetween(ctx context.Context, from, to time.Time) ([]registration.Reminder, error)
}

type JobsSink interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type Config struct {
	SweepInterval time.Duration // cadence between sweeps
	Lead          time.Duration // how far ahead of start_time to remind
	Window        time.Duration // half-width around the lead mark
}

// Scheduler periodically fans out reminder jobs for events starting around
// now+Lead. The window is +-Window around that mark; with a window
// half-width matching the sweep cadence every qualifying event is captured
// by at least one run, without a persisted already-notified ledger. Events
// landing in the overlap of two consecutive runs can be reminded twice;
// delivery is at-least-once throughout.
type Scheduler struct {
	cfg    Config
	regs   RegistrationsSource
	sink   JobsSink
	prom   *observability.Prom
	logger *slog.Logger

	now func() time.Time
}

func New(cfg Config, regs RegistrationsSource, sink JobsSink, prom *observability.Prom, logger *slog.Logger) *Scheduler {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 15 * time.Minute
	}
	if cfg.Lead <= 0 {
		cfg.Lead = 2 * time.Hour
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}

	return &Scheduler{
		cfg:    cfg,
		regs:   regs,
		sink:   sink,
		prom:   prom,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type SweepResult struct {
	Events    int
	Enqueued  int
	Failed    int
	WindowLow time.Time
	WindowTop time.Time
}

// Run sweeps immediately, then on every tick until ctx is cancelled. The
// sweep holds no locks shared with request handling.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Scheduler) sweepAndLog(ctx context.Context) {
	res, err := s.Sweep(ctx)

	if err != nil {
		s.logger.Error("reminder sweep failed", "error", err)
		return
	}

	s.logger.Info("reminder sweep done",
		"events", res.Events,
		"enqueued", res.Enqueued,
		"failed", res.Failed,
		"window_low", res.WindowLow.Format(time.RFC3339),
		"window_top", res.WindowTop.Format(time.RFC3339),
	)
}

// Sweep selects every registration of a scheduled event starting inside the
// reminder window and enqueues one reminder job per registration. A failure
// on one item is logged and skipped; the rest of the sweep continues.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	now := s.now()
	target := now.Add(s.cfg.Lead)

	res := SweepResult{
		WindowLow: target.Add(-s.cfg.Window),
		WindowTop: target.Add(s.cfg.Window),
	}

	rows, err := s.regs.RemindersBetween(ctx, res.WindowLow, res.WindowTop)

	if err != nil {
		if s.prom != nil {
			s.prom.SweepDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		}
		return res, err
	}

	seenEvents := make(map[string]struct{})

	for _, row := range rows {
		if _, ok := seenEvents[row.EventID]; !ok {
			seenEvents[row.EventID] = struct{}{}
			res.Events++
		}

		payload, err := jobs.EncodePayload(jobs.JobEventReminder, jobs.EventReminderPayload{
			RegistrationID: row.RegistrationID,
			EventID:        row.EventID,
			EventName:      row.EventName,
			Email:          row.Email,
			Username:       row.Username,
			StartTime:      row.StartTime.UTC().Format(time.RFC3339),
		})

		if err != nil {
			res.Failed++
			s.logger.Error("encode reminder payload", "registration_id", row.RegistrationID, "error", err)
			continue
		}

		_, err = s.sink.Create(ctx, job.CreateRequest{
			Type:    string(jobs.JobEventReminder),
			Payload: payload,
		})

		if err != nil {
			res.Failed++
			s.logger.Error("enqueue reminder", "registration_id", row.RegistrationID, "event_id", row.EventID, "error", err)
			continue
		}

		res.Enqueued++

		if s.prom != nil {
			s.prom.SweepEnqueued.Inc()
		}
	}

	if s.prom != nil {
		s.prom.SweepDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	}

	return res, nil
}
