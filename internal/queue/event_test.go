package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kachapon/seminar-registration/internal/mailer"
)

// The consumer hands a decoded event straight to the mailer, so the
// queue's event type and kind constants must be the mailer's own.
func TestNotifyEventMatchesMailerNotification(t *testing.T) {
	ev := RegistrantNotifyEvent{
		Kind:       KindCheckedIn,
		TicketCode: "CCI-4F7K2Q",
		FirstName:  "Somchai",
		LastName:   "Jaidee",
		Email:      "somchai@example.com",
	}

	bs, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded mailer.Notification
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Equal(t, mailer.KindCheckedIn, decoded.Kind)
	assert.Equal(t, ev, decoded)
}
