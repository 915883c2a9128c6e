package notifications

import (
	"context"

	"github.com/dicoevent/dicoevent/internal/mail"
)

// MailNotifier delivers over SMTP via the mailer. gomail has no context
// support, so cancellation is handled by the caller's timeout wrapper.
type MailNotifier struct {
	mailer *mail.Mailer
}

func NewMailNotifier(mailer *mail.Mailer) *MailNotifier {
	return &MailNotifier{mailer: mailer}
}

func (n *MailNotifier) SendTicketConfirmation(ctx context.Context, in TicketConfirmationInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.mailer.SendTicketConfirmation(in.Email, in.Username, in.RegistrationID)
}

func (n *MailNotifier) SendEventReminder(ctx context.Context, in EventReminderInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.mailer.SendEventReminder(in.Email, in.Username, in.EventName, in.StartTime)
}
