package simulator

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fairyhunter13/storefront-client/internal/obs"
)

// Hub fans notification events out to connected stream clients. Events flow
// through an eventQueue so publishers (the HTTP handlers and the payment
// processor) never block on slow consumers; a subscriber that cannot keep
// up is dropped rather than buffered without bound.
type Hub struct {
	q *eventQueue

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewHub creates a Hub whose queue buffers up to buffer events in flight.
func NewHub(buffer int) *Hub {
	return &Hub{
		q:    newEventQueue(buffer),
		subs: make(map[chan []byte]struct{}),
	}
}

// Start runs the queue broker and the fan-out loop until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	h.q.start(ctx)
	go h.fanout(ctx)
}

// Publish enqueues one event payload for delivery to every subscriber.
func (h *Hub) Publish(payload []byte) {
	h.q.enqueue(payload)
}

// PublishEvent marshals a routing key and body into the notification
// envelope and publishes it.
func (h *Hub) PublishEvent(key string, body any) {
	env := map[string]any{"evento": key, "dados": body}
	b, err := json.Marshal(env)
	if err != nil {
		obs.Logger.Error("notify_event_marshal_failed", "key", key, "error", err)
		return
	}
	h.Publish(b)
	obs.Logger.Info("notify_event_published", "key", key)
}

// Subscribe registers a new stream client and returns its delivery channel.
func (h *Hub) Subscribe(buffer int) chan []byte {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan []byte, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a stream client. Safe to call after the hub already
// dropped the subscriber.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Subscribers returns the number of connected stream clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) fanout(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-h.q.out:
			h.mu.Lock()
			for ch := range h.subs {
				select {
				case ch <- payload:
				default:
					// Slow client: drop it instead of buffering.
					delete(h.subs, ch)
					close(ch)
					obs.Logger.Warn("notify_subscriber_dropped", "reason", "slow_consumer")
				}
			}
			h.mu.Unlock()
		}
	}
}
