package services

import (
	"log"
	"sync"
	"time"
)

// Event types pushed over the notification stream
const (
	EventConnected          = "connected"
	EventNotificationUpdate = "notification_update"
	EventKeepalive          = "keepalive"
)

// Event is one frame on the notification stream
type Event struct {
	Type       string  `json:"type"`
	CustomerID uint    `json:"customer_id,omitempty"`
	Timestamp  float64 `json:"timestamp,omitempty"`
}

// Per-subscriber queue depth. A subscriber that falls this far behind
// loses update events, which is fine: the client re-syncs from the
// notification store on its next fetch.
const subscriberBuffer = 8

// Broadcaster fans out notification-update signals to the open push
// connections of each customer. All state is process-local; there is no
// missed-event redelivery.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[uint][]chan Event
}

// NewBroadcaster creates a new broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint][]chan Event),
	}
}

// Subscribe registers a new connection for the customer. The returned
// cancel function removes the registration and must be called on every
// exit path of the consumer.
func (b *Broadcaster) Subscribe(customerID uint) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[customerID] = append(b.subscribers[customerID], ch)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subs := b.subscribers[customerID]
			for i, sub := range subs {
				if sub == ch {
					b.subscribers[customerID] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(b.subscribers[customerID]) == 0 {
				delete(b.subscribers, customerID)
			}
		})
	}

	return ch, cancel
}

// Publish pushes an update-available event to every open connection for
// the customer. Sends never block: a full or abandoned subscriber just
// misses the event.
func (b *Broadcaster) Publish(customerID uint) {
	event := Event{
		Type:       EventNotificationUpdate,
		CustomerID: customerID,
		Timestamp:  float64(time.Now().UnixNano()) / float64(time.Second),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for _, ch := range b.subscribers[customerID] {
		select {
		case ch <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("Broadcaster: dropped update for %d slow subscriber(s) of customer %d", dropped, customerID)
	}
}

// SubscriberCount returns the number of open connections for a customer
func (b *Broadcaster) SubscriberCount(customerID uint) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[customerID])
}
