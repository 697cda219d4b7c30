package queue

import "github.com/kachapon/seminar-registration/internal/mailer"

// Notification kinds carried on the registrant.notify queue.  The
// canonical definitions live in the mailer, which is the leaf of the
// dependency graph; publishers refer to them through this package.
const (
	KindRegistrationConfirmed = mailer.KindRegistrationConfirmed
	KindCheckedIn             = mailer.KindCheckedIn
)

// RegistrantNotifyEvent is the wire form of one notification.  It is
// an alias so the consumer can hand a decoded message straight to the
// mailer without converting.
type RegistrantNotifyEvent = mailer.Notification
