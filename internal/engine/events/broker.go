// Package events fans lifecycle notifications out to subscribers.
package events

import (
	"sync"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
)

// Broker delivers every published event to every subscriber.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan domain.Event
	nextID int
	closed bool
	now    func() time.Time
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int]chan domain.Event),
		now:  time.Now,
	}
}

// Subscribe registers a subscriber with the given channel buffer.
// The returned function unsubscribes and closes the channel; it is safe to call twice.
func (b *Broker) Subscribe(buffer int) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, max(buffer, 0))

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.remove(id) })
	}
}

// Publish stamps ev and delivers it to every subscriber with room for it.
func (b *Broker) Publish(ev domain.Event) {
	if ev.At.IsZero() {
		ev.At = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *Broker) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}
