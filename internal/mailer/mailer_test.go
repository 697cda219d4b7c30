package mailer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSendRejectsUnknownKind(t *testing.T) {
	err := Send(zerolog.Nop(), SMTPConfig{}, Notification{Kind: "raffle_won"})
	assert.ErrorContains(t, err, "unknown notification kind")
}
