package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/job"
	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/dicoevent/dicoevent/internal/jobs"
)

type fakeRegs struct {
	rows     []registration.Reminder
	err      error
	gotFrom  time.Time
	gotTo    time.Time
	numCalls int
}

func (f *fakeRegs) RemindersBetween(ctx context.Context, from, to time.Time) ([]registration.Reminder, error) {
	f.numCalls++
	f.gotFrom = from
	f.gotTo = to

	if f.err != nil {
		return nil, f.err
	}

	// emulate the store's window filter
	out := make([]registration.Reminder, 0, len(f.rows))
	for _, r := range f.rows {
		if !r.StartTime.Before(from) && !r.StartTime.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSink struct {
	created []job.CreateRequest
	failFor map[string]error // keyed by registration id in payload
}

func (f *fakeSink) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	decoded, err := jobs.DecodePayload(jobs.JobType(req.Type), req.Payload)
	if err != nil {
		return job.Job{}, err
	}
	p := decoded.(jobs.EventReminderPayload)

	if e, ok := f.failFor[p.RegistrationID]; ok {
		return job.Job{}, e
	}

	f.created = append(f.created, req)
	return job.New(req), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestScheduler(regs *fakeRegs, sink *fakeSink, now time.Time) *Scheduler {
	s := New(Config{
		SweepInterval: 15 * time.Minute,
		Lead:          2 * time.Hour,
		Window:        15 * time.Minute,
	}, regs, sink, nil, testLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestSweep_WindowBounds(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	regs := &fakeRegs{}
	sink := &fakeSink{}

	s := newTestScheduler(regs, sink, now)

	if _, err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	wantFrom := now.Add(1*time.Hour + 45*time.Minute)
	wantTo := now.Add(2*time.Hour + 15*time.Minute)

	if !regs.gotFrom.Equal(wantFrom) {
		t.Errorf("window low = %v, want %v", regs.gotFrom, wantFrom)
	}
	if !regs.gotTo.Equal(wantTo) {
		t.Errorf("window top = %v, want %v", regs.gotTo, wantTo)
	}
}

func TestSweep_CapturesOnlyEventsInWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	regs := &fakeRegs{rows: []registration.Reminder{
		{RegistrationID: "r-in", EventID: "e-in", EventName: "Soon", Email: "a@b.c", Username: "a", StartTime: now.Add(2*time.Hour + 5*time.Minute)},
		{RegistrationID: "r-early", EventID: "e-early", EventName: "Later", Email: "b@b.c", Username: "b", StartTime: now.Add(3 * time.Hour)},
		{RegistrationID: "r-late", EventID: "e-late", EventName: "Too close", Email: "c@b.c", Username: "c", StartTime: now.Add(90 * time.Minute)},
	}}
	sink := &fakeSink{}

	s := newTestScheduler(regs, sink, now)

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	if res.Enqueued != 1 || res.Events != 1 {
		t.Fatalf("got enqueued=%d events=%d, want 1/1", res.Enqueued, res.Events)
	}

	decoded, err := jobs.DecodePayload(jobs.JobEventReminder, sink.created[0].Payload)
	if err != nil {
		t.Fatalf("decode enqueued payload: %v", err)
	}
	p := decoded.(jobs.EventReminderPayload)

	if p.RegistrationID != "r-in" {
		t.Errorf("enqueued registration %q, want r-in", p.RegistrationID)
	}
	if p.StartTime != now.Add(2*time.Hour+5*time.Minute).Format(time.RFC3339) {
		t.Errorf("start time = %q, not RFC3339 of event start", p.StartTime)
	}
}

func TestSweep_FanOutPerRegistration(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(2 * time.Hour)

	regs := &fakeRegs{rows: []registration.Reminder{
		{RegistrationID: "r-1", EventID: "e-1", EventName: "Conf", Email: "a@b.c", Username: "a", StartTime: start},
		{RegistrationID: "r-2", EventID: "e-1", EventName: "Conf", Email: "b@b.c", Username: "b", StartTime: start},
		{RegistrationID: "r-3", EventID: "e-2", EventName: "Meetup", Email: "c@b.c", Username: "c", StartTime: start.Add(10 * time.Minute)},
	}}
	sink := &fakeSink{}

	s := newTestScheduler(regs, sink, now)

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	if res.Enqueued != 3 {
		t.Errorf("enqueued = %d, want 3", res.Enqueued)
	}
	if res.Events != 2 {
		t.Errorf("events = %d, want 2", res.Events)
	}
}

func TestSweep_FailureIsolated(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(2 * time.Hour)

	regs := &fakeRegs{rows: []registration.Reminder{
		{RegistrationID: "r-1", EventID: "e-1", EventName: "Conf", Email: "a@b.c", Username: "a", StartTime: start},
		{RegistrationID: "r-2", EventID: "e-1", EventName: "Conf", Email: "b@b.c", Username: "b", StartTime: start},
	}}
	sink := &fakeSink{failFor: map[string]error{"r-1": errors.New("queue down")}}

	s := newTestScheduler(regs, sink, now)

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	if res.Failed != 1 || res.Enqueued != 1 {
		t.Fatalf("got failed=%d enqueued=%d, want 1/1", res.Failed, res.Enqueued)
	}
}

func TestSweep_SourceErrorPropagates(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	regs := &fakeRegs{err: errors.New("db down")}
	sink := &fakeSink{}

	s := newTestScheduler(regs, sink, now)

	if _, err := s.Sweep(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}

	if len(sink.created) != 0 {
		t.Errorf("no jobs should be enqueued, got %d", len(sink.created))
	}
}
