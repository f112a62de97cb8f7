package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_PublishReachesSubscriber(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Publish(1)

	select {
	case event := <-ch:
		assert.Equal(t, EventNotificationUpdate, event.Type)
		assert.Equal(t, uint(1), event.CustomerID)
		assert.NotZero(t, event.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("expected an event on the subscriber channel")
	}
}

func TestBroadcaster_PublishIsScopedToCustomer(t *testing.T) {
	b := NewBroadcaster()

	mine, cancelMine := b.Subscribe(1)
	defer cancelMine()
	other, cancelOther := b.Subscribe(2)
	defer cancelOther()

	b.Publish(1)

	select {
	case <-mine:
	case <-time.After(time.Second):
		t.Fatal("expected an event for customer 1")
	}

	select {
	case event := <-other:
		t.Fatalf("customer 2 received a foreign event: %+v", event)
	default:
	}
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster()

	first, cancelFirst := b.Subscribe(1)
	defer cancelFirst()
	second, cancelSecond := b.Subscribe(1)
	defer cancelSecond()

	require.Equal(t, 2, b.SubscriberCount(1))

	b.Publish(1)

	for _, ch := range []<-chan Event{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("every open connection should receive the event")
		}
	}
}

func TestBroadcaster_Cancel(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe(1)
	require.Equal(t, 1, b.SubscriberCount(1))

	cancel()
	assert.Equal(t, 0, b.SubscriberCount(1))

	// Cancel is safe to call more than once
	cancel()
	assert.Equal(t, 0, b.SubscriberCount(1))

	b.Publish(1)
	select {
	case event := <-ch:
		t.Fatalf("cancelled subscriber received event: %+v", event)
	default:
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()

	_, cancel := b.Subscribe(1)
	defer cancel()

	// Nothing drains the channel; once the buffer fills, further
	// publishes drop the event instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(1)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBroadcaster_PublishWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster()
	assert.NotPanics(t, func() { b.Publish(42) })
}
