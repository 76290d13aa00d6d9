package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessEventBus_PublishSubscribe(t *testing.T) {
	bus := NewInProcessEventBus(slog.Default())
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx, events.TimerCompletedV1)
	require.NoError(t, err)

	msg, err := events.NewMessage(events.TimerCompletedV1, events.TimerPayload{UserID: "u1", Year: 2023, Day: 3, Star: 1})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(events.TimerCompletedV1, msg))

	select {
	case got := <-messages:
		payload, err := events.DecodeTimer(got)
		require.NoError(t, err)
		assert.Equal(t, "u1", payload.UserID)
		assert.Equal(t, 3, payload.Day)
		got.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNewEventBus_EmptyURLUsesGoChannel(t *testing.T) {
	bus, err := NewEventBus(context.Background(), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	impl, ok := bus.(*eventBus)
	require.True(t, ok)
	assert.Equal(t, "gochannel", impl.transport)
}
