package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/job"
	"github.com/dicoevent/dicoevent/internal/jobs"
	"github.com/dicoevent/dicoevent/internal/notifications"
)

// ProcessOne claims and executes a single job. Returns false when the queue
// is empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, err
	}

	w.metrics.IncClaimed()
	w.prom.JobsInFlight.Inc()
	defer w.prom.JobsInFlight.Dec()

	start := time.Now()
	err = w.execute(ctx, j)
	elapsed := time.Since(start)

	w.metrics.ObserveDuration(elapsed)

	if err != nil {
		w.handleFailure(ctx, j, err, elapsed)
		return true, nil
	}

	w.metrics.IncDone()
	w.prom.JobDuration.WithLabelValues(j.Type, "done").Observe(elapsed.Seconds())
	w.prom.JobResults.WithLabelValues(j.Type, "done").Inc()

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	return true, nil
}

// execute dispatches by job type to the notifier.
func (w *Worker) execute(ctx context.Context, j job.Job) error {
	jt := jobs.JobType(j.Type)

	decoded, err := jobs.DecodePayload(jt, j.Payload)

	if err != nil {
		return err
	}

	switch p := decoded.(type) {
	case jobs.TicketConfirmationPayload:
		return w.notifier.SendTicketConfirmation(ctx, notifications.TicketConfirmationInput{
			Email:          p.Email,
			Username:       p.Username,
			RegistrationID: p.RegistrationID,
		})

	case jobs.EventReminderPayload:
		startTime, perr := time.Parse(time.RFC3339, p.StartTime)
		if perr != nil {
			return perr
		}

		return w.notifier.SendEventReminder(ctx, notifications.EventReminderInput{
			Email:          p.Email,
			Username:       p.Username,
			EventID:        p.EventID,
			EventName:      p.EventName,
			RegistrationID: p.RegistrationID,
			StartTime:      startTime,
		})

	default:
		return jobs.ErrInvalidJobType
	}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error, elapsed time.Duration) {
	// attempts is pre-increment here; Reschedule bumps it
	if j.Attempts+1 >= j.MaxAttempts {
		w.metrics.IncFailed()
		w.metrics.IncDeadLettered()
		w.prom.JobDuration.WithLabelValues(j.Type, "failed").Observe(elapsed.Seconds())
		w.prom.JobResults.WithLabelValues(j.Type, "failed").Inc()

		w.logger.Error("job dead-lettered", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "error", execErr)

		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.logger.Error("mark failed", "job_id", j.ID, "error", err)
		}
		return
	}

	delay := ExponentialBackoff(j.Attempts)
	runAt := time.Now().UTC().Add(delay)

	w.metrics.IncRetried()
	w.prom.JobDuration.WithLabelValues(j.Type, "retry").Observe(elapsed.Seconds())
	w.prom.JobResults.WithLabelValues(j.Type, "retry").Inc()

	w.logger.Warn("job retry scheduled", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts+1, "run_at", runAt, "error", execErr)

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.logger.Error("reschedule", "job_id", j.ID, "error", err)
	}
}
