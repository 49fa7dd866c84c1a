// Package pubsub fans newly indexed events out to WebSocket subscribers.
// Producers never block: a subscriber that stops draining its queue is
// disconnected instead of stalling the indexing loop.
package pubsub

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultSubscriberBacklog is the per-subscriber queue bound.
const DefaultSubscriberBacklog = 10_000

// Bus is a multi-producer multi-consumer fan-out. Ordering is preserved per
// subscriber, not across subscribers.
type Bus[T any] struct {
	mu      sync.Mutex
	logger  *zap.Logger
	subs    map[uint64]*Subscription[T]
	nextID  uint64
	backlog int
	closed  bool
}

// Subscription is one subscriber's bounded queue. C is closed when the
// subscriber is cancelled, dropped for falling behind, or the bus shuts
// down.
type Subscription[T any] struct {
	C  <-chan T
	ch chan T
	id uint64
	b  *Bus[T]
}

// New builds a bus; backlog <= 0 uses the default bound.
func New[T any](logger *zap.Logger, backlog int) *Bus[T] {
	if backlog <= 0 {
		backlog = DefaultSubscriberBacklog
	}
	return &Bus[T]{
		logger:  logger.Named("pubsub"),
		subs:    make(map[uint64]*Subscription[T]),
		backlog: backlog,
	}
}

// Subscribe registers a new queue. Subscribing to a closed bus returns an
// already-closed subscription.
func (b *Bus[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.backlog)
	sub := &Subscription[T]{C: ch, ch: ch, id: b.nextID, b: b}
	if b.closed {
		close(ch)
		return sub
	}
	b.nextID++
	b.subs[sub.id] = sub
	return sub
}

// Cancel removes the subscription and closes its channel. Safe to call more
// than once.
func (s *Subscription[T]) Cancel() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.dropLocked(s.id)
}

// Publish delivers to every subscriber without blocking. A subscriber whose
// queue is full is dropped.
func (b *Bus[T]) Publish(value T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, sub := range b.subs {
		select {
		case sub.ch <- value:
		default:
			b.logger.Warn("dropping slow subscriber", zap.Uint64("id", id))
			b.dropLocked(id)
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id := range b.subs {
		b.dropLocked(id)
	}
}

// SubscriberCount reports live subscribers.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus[T]) dropLocked(id uint64) {
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}
