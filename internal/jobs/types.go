package jobs

type JobType string

const (
	// JobTicketConfirmation is enqueued in the same transaction as a new
	// registration.
	JobTicketConfirmation JobType = "ticket.confirmation"

	// JobEventReminder is enqueued by the reminder sweep for every
	// registration on an event starting soon.
	JobEventReminder JobType = "event.reminder"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobTicketConfirmation, JobEventReminder:
		return true
	default:
		return false
	}
}
