package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omengineers/booking-backend/internal/services"
)

func decodeFrames(t *testing.T, raw string) []services.Event {
	t.Helper()
	var decoded []services.Event
	for _, frame := range strings.Split(strings.TrimSpace(raw), "\n\n") {
		payload, ok := strings.CutPrefix(frame, "data: ")
		require.True(t, ok, "frame %q is not data-prefixed", frame)
		var event services.Event
		require.NoError(t, json.Unmarshal([]byte(payload), &event))
		decoded = append(decoded, event)
	}
	return decoded
}

func TestStreamEvents_ConnectedThenUpdates(t *testing.T) {
	events := make(chan services.Event, 2)
	events <- services.Event{Type: services.EventNotificationUpdate, CustomerID: 7, Timestamp: 1700000000}
	events <- services.Event{Type: services.EventNotificationUpdate, CustomerID: 7, Timestamp: 1700000001}
	close(events)

	var buf bytes.Buffer
	streamEvents(bufio.NewWriter(&buf), 7, events, time.Minute)

	frames := decodeFrames(t, buf.String())
	require.Len(t, frames, 3)

	// The connected frame comes first, before any queued update
	assert.Equal(t, services.EventConnected, frames[0].Type)
	assert.Equal(t, uint(7), frames[0].CustomerID)
	assert.Equal(t, services.EventNotificationUpdate, frames[1].Type)
	assert.Equal(t, services.EventNotificationUpdate, frames[2].Type)
}

func TestStreamEvents_ForwardsBroadcasterPublishes(t *testing.T) {
	b := services.NewBroadcaster()
	events, cancel := b.Subscribe(7)

	b.Publish(7)
	cancel()
	// Closing the feed after cancel drains the loop deterministically
	closed := make(chan services.Event, 1)
	for len(events) > 0 {
		closed <- <-events
	}
	close(closed)

	var buf bytes.Buffer
	streamEvents(bufio.NewWriter(&buf), 7, closed, time.Minute)

	frames := decodeFrames(t, buf.String())
	require.Len(t, frames, 2)
	assert.Equal(t, services.EventConnected, frames[0].Type)
	assert.Equal(t, services.EventNotificationUpdate, frames[1].Type)
	assert.Equal(t, uint(7), frames[1].CustomerID)
	assert.NotZero(t, frames[1].Timestamp)
}

func TestStreamEvents_Keepalive(t *testing.T) {
	events := make(chan services.Event)

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		streamEvents(bufio.NewWriter(&buf), 7, events, 20*time.Millisecond)
	}()

	// Long enough for at least one keepalive tick on an idle connection
	time.Sleep(80 * time.Millisecond)
	close(events)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after the event source closed")
	}

	frames := decodeFrames(t, buf.String())
	require.GreaterOrEqual(t, len(frames), 2)
	assert.Equal(t, services.EventConnected, frames[0].Type)
	for _, frame := range frames[1:] {
		assert.Equal(t, services.EventKeepalive, frame.Type)
		assert.NotZero(t, frame.Timestamp)
	}
}
