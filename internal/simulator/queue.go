package simulator

import (
	"context"
	"sync"
	"time"
)

// eventQueue is a buffered notification-event queue with a background
// broker. Publishing never blocks the handler that raised the event; the
// broker moves backlog items to the output channel as the hub drains it.
type eventQueue struct {
	mu      sync.Mutex
	backlog [][]byte
	notify  chan struct{}
	out     chan []byte
}

func newEventQueue(outBuffer int) *eventQueue {
	if outBuffer <= 0 {
		outBuffer = 16
	}
	return &eventQueue{
		notify: make(chan struct{}, 1),
		out:    make(chan []byte, outBuffer),
	}
}

func (q *eventQueue) start(ctx context.Context) {
	go q.broker(ctx)
}

func (q *eventQueue) broker(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flushOnce()
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

func (q *eventQueue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

func (q *eventQueue) enqueue(payload []byte) {
	q.mu.Lock()
	q.backlog = append(q.backlog, payload)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
