package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogNotifier prints instead of sending; the default in dev where no SMTP
// relay is around.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) simulate(ctx context.Context) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}

func (n *LogNotifier) SendTicketConfirmation(ctx context.Context, in TicketConfirmationInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}

	log.Printf("notification.ticket_confirmation email=%s username=%s registration=%s",
		in.Email, in.Username, in.RegistrationID,
	)
	return nil
}

func (n *LogNotifier) SendEventReminder(ctx context.Context, in EventReminderInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}

	log.Printf("notification.event_reminder email=%s username=%s event=%s start=%s",
		in.Email, in.Username, in.EventName, in.StartTime.Format(time.RFC3339),
	)
	return nil
}
