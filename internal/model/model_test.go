package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGiftEligible(t *testing.T) {
	assert.True(t, GiftEligible(TransportPublic))
	assert.True(t, GiftEligible(TransportWalking))
	assert.False(t, GiftEligible(TransportPrivate))
	assert.False(t, GiftEligible(""))
}

func TestAfternoonIncluded(t *testing.T) {
	assert.False(t, AfternoonIncluded(AttendanceMorning))
	assert.True(t, AfternoonIncluded(AttendanceAfternoon))
	assert.True(t, AfternoonIncluded(AttendanceFullDay))
}
