package mail

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer sends multipart mail: a plain text body with an HTML alternative,
// so clients without HTML rendering still get the message.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) send(to, subject, text, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) SendTicketConfirmation(to, username, registrationID string) error {
	subject := "Your Dico Event registration is confirmed"
	text, html := confirmationBodies(username, registrationID)

	return m.send(to, subject, text, html)
}

func (m *Mailer) SendEventReminder(to, username, eventName string, startTime time.Time) error {
	subject := fmt.Sprintf("Reminder: %s starts soon", eventName)
	when := startTime.Format("Mon, 02 Jan 2006 15:04 MST")
	text, html := reminderBodies(username, eventName, when)

	return m.send(to, subject, text, html)
}

// the registration id is the attendee's reference at check-in, so it goes in
// the body verbatim

func confirmationBodies(username, registrationID string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nYour registration has been received and your ticket is confirmed.\nRegistration ID: %s\n\nSee you there!\nThe Dico Event Team",
		username, registrationID,
	)

	html = fmt.Sprintf(
		`<p>Hi <strong>%s</strong>,</p><p>Your registration has been received and your ticket is confirmed.</p><p>Registration ID: <code>%s</code></p><p>See you there!<br>The Dico Event Team</p>`,
		username, registrationID,
	)

	return text, html
}

func reminderBodies(username, eventName, when string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nThis is a reminder that %s starts at %s.\n\nSee you there!\nThe Dico Event Team",
		username, eventName, when,
	)

	html = fmt.Sprintf(
		`<p>Hi <strong>%s</strong>,</p><p>This is a reminder that <strong>%s</strong> starts at %s.</p><p>See you there!<br>The Dico Event Team</p>`,
		username, eventName, when,
	)

	return text, html
}
