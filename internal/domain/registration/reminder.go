package registration

import "time"

// Reminder is the denormalized row the sweep reads: one per registration
// whose event starts inside the reminder window.
type Reminder struct {
	RegistrationID string
	EventID        string
	EventName      string
	Email          string
	Username       string
	StartTime      time.Time
}
