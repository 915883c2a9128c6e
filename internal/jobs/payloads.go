package jobs

import "time"

// TicketConfirmationPayload carries what the confirmation email needs. Keep
// payloads small and denormalized; the worker must not re-join the catalog.
type TicketConfirmationPayload struct {
	RegistrationID string    `json:"registrationId"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	RequestedAt    time.Time `json:"requestedAt"`
}

// EventReminderPayload carries the registrant contact and the event start
// time as a portable RFC3339 string.
type EventReminderPayload struct {
	RegistrationID string `json:"registrationId"`
	EventID        string `json:"eventId"`
	EventName      string `json:"eventName"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	StartTime      string `json:"startTime"`
}
