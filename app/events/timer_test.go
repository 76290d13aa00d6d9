package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_DecodeTimer(t *testing.T) {
	stop := time.Date(2023, 12, 1, 5, 10, 0, 0, time.UTC)
	in := TimerPayload{
		UserID:   "u1",
		Year:     2023,
		Day:      1,
		Star:     2,
		InitTime: stop.Add(-10 * time.Minute),
		StopTime: &stop,
	}

	msg, err := NewMessage(TimerCompletedV1, in)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.UUID)
	assert.Equal(t, TimerCompletedV1, msg.Metadata.Get(MetadataTopic))

	out, err := DecodeTimer(msg)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Star, out.Star)
	require.NotNil(t, out.StopTime)
	assert.True(t, stop.Equal(*out.StopTime))
}

func TestDecodeTimer_BadPayload(t *testing.T) {
	msg, err := NewMessage(TimerStartedV1, "not an object")
	require.NoError(t, err)

	_, err = DecodeTimer(msg)
	assert.Error(t, err)
}
