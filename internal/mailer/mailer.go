// Package mailer delivers registrant notifications over SMTP.  It is
// only ever invoked by the queue consumer, so a delivery failure can
// never fail the registration or check-in that produced the message.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Notification kinds carried on the registrant.notify queue.
const (
	KindRegistrationConfirmed = "registration_confirmed"
	KindCheckedIn             = "checked_in"
)

// Notification is published when a registrant should be contacted:
// once with their ticket code after a successful registration, and
// once with a thank-you after check-in.  It carries enough
// information to compose the message without querying the primary
// database.  Delivery is fire-and-forget; the state transition that
// produced the event never depends on it.
type Notification struct {
	Kind           string `json:"kind"`
	TicketCode     string `json:"ticket_code"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	AttendanceType string `json:"attendance_type,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}

// SMTPConfig carries the delivery settings loaded from the environment.
type SMTPConfig struct {
	Host string // e.g. smtp.gmail.com
	Port string // e.g. 587
	From string // sender address, also the auth user
	Pass string // auth password or app password
}

// Send composes and delivers the email for one notification.
func Send(log zerolog.Logger, cfg SMTPConfig, ev Notification) error {
	var subject, body string
	switch ev.Kind {
	case KindRegistrationConfirmed:
		subject = "Your seminar registration is confirmed"
		body = fmt.Sprintf(
			"Hello %s %s,\n\nYour registration is confirmed. Your ticket code is %s.\nPlease present it (or its QR code) at the venue for check-in.",
			ev.FirstName, ev.LastName, ev.TicketCode)
	case KindCheckedIn:
		subject = "Thank you for joining us"
		body = fmt.Sprintf(
			"Hello %s %s,\n\nYou have been checked in with ticket %s. Thank you for attending, and enjoy the seminar!",
			ev.FirstName, ev.LastName, ev.TicketCode)
	default:
		return fmt.Errorf("unknown notification kind %q", ev.Kind)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		cfg.From, ev.Email, subject, body,
	)

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.From, cfg.Pass, cfg.Host)

	if err := smtp.SendMail(addr, auth, cfg.From, []string{ev.Email}, []byte(msg)); err != nil {
		log.Warn().Err(err).Str("email", ev.Email).Msg("failed to send notification email")
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Str("email", ev.Email).Str("kind", ev.Kind).Msg("notification email sent")
	return nil
}
