package events

import (
	"errors"
	"sync"

	"factotum-cli/internal/logger"
)

var (
	// ErrBusClosed means the bus no longer accepts events.
	ErrBusClosed = errors.New("event bus closed")
	// ErrEventDropped means at least one slow subscriber missed the event.
	ErrEventDropped = errors.New("event dropped by slow subscriber")
)

var log = logger.Named("events")

// Bus fans session events out to subscribers. Publish never blocks: a
// subscriber that cannot keep up drops events rather than stalling the
// stream.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	buffer int
	closed bool
}

// NewBus creates a bus; buffer is the per-subscriber channel capacity.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{buffer: buffer}
}

// Subscribe returns a channel of events. It is closed when the bus closes.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	ch := make(chan Event, b.buffer)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers the event to all subscribers. Returns ErrEventDropped if
// any subscriber buffer was full. The sends happen under the bus lock so a
// concurrent Close can never close a channel mid-send; they stay non-blocking
// either way.
func (b *Bus) Publish(event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}

	dropped := false
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			dropped = true
		}
	}
	if dropped {
		log.WithField("kind", event.Kind).Warn("event dropped by slow subscriber")
		return ErrEventDropped
	}
	return nil
}

// Close shuts the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
