package notifications

import (
	"context"
	"time"
)

type TicketConfirmationInput struct {
	Email          string
	Username       string
	RegistrationID string
}

type EventReminderInput struct {
	Email          string
	Username       string
	EventID        string
	EventName      string
	RegistrationID string
	StartTime      time.Time
}

type Notifier interface {
	SendTicketConfirmation(ctx context.Context, input TicketConfirmationInput) error
	SendEventReminder(ctx context.Context, input EventReminderInput) error
}
