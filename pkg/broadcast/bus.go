// Package broadcast implements the topic-keyed fan-out bus from spec.md
// §4.8: one subscription set per project, best-effort delivery, no
// durability, and a drop-oldest backpressure policy per subscriber.
// Grounded in the teacher's pkg/events.ConnectionManager (per-channel
// subscriber sets protected by a short critical section, snapshot-then-send
// to avoid holding the lock across I/O) but message-passing via buffered Go
// channels instead of direct WebSocket writes, per spec.md §9.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// subscriberBuffer bounds how many undelivered events a subscriber holds
// before the bus starts dropping the oldest one.
const subscriberBuffer = 64

// Event is one typed payload published onto a topic.
type Event struct {
	Type    string                 `json:"type"`
	Topic   string                 `json:"-"`
	Payload map[string]interface{} `json:"-"`
}

// Bus is a topic-keyed fan-out of Events to live subscribers.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscriber
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{topics: make(map[string]map[string]*Subscriber)}
}

// Subscriber receives events for one topic through a buffered channel. Once
// the buffer fills, the bus drops the oldest queued event and increments
// Lost rather than blocking the publisher (spec.md §9).
type Subscriber struct {
	ID    string
	Topic string
	ch    chan Event
	lost  int64
}

// Events returns the channel to range over for delivered events.
func (s *Subscriber) Events() <-chan Event { return s.ch }

// Lost returns how many events have been dropped for this subscriber so far.
func (s *Subscriber) Lost() int64 { return atomic.LoadInt64(&s.lost) }

// Subscribe registers a new subscriber on topic and returns it. Callers must
// call Unsubscribe when done to release the channel.
func (b *Bus) Subscribe(topic string) *Subscriber {
	sub := &Subscriber{
		ID:    uuid.NewString(),
		Topic: topic,
		ch:    make(chan Event, subscriberBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*Subscriber)
	}
	b.topics[topic][sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	if subs, ok := b.topics[sub.Topic]; ok {
		delete(subs, sub.ID)
		if len(subs) == 0 {
			delete(b.topics, sub.Topic)
		}
	}
	b.mu.Unlock()
	close(sub.ch)
}

// Publish delivers event to every live subscriber of topic. Delivery is
// best-effort and non-blocking: a full subscriber buffer has its oldest
// event dropped to make room, it never stalls the publisher. Events from
// this call reach each individual subscriber in the order Publish was
// called (spec.md §5); no ordering is promised across subscribers.
func (b *Bus) Publish(topic string, event Event) {
	event.Topic = topic

	b.mu.RLock()
	subs, ok := b.topics[topic]
	if !ok {
		b.mu.RUnlock()
		return
	}
	snapshot := make([]*Subscriber, 0, len(subs))
	for _, s := range subs {
		snapshot = append(snapshot, s)
	}
	b.mu.RUnlock()

	for _, s := range snapshot {
		deliver(s, event)
	}
}

func deliver(s *Subscriber, event Event) {
	select {
	case s.ch <- event:
		return
	default:
	}

	// Buffer full: drop the oldest queued event and retry once.
	select {
	case <-s.ch:
		atomic.AddInt64(&s.lost, 1)
	default:
	}
	select {
	case s.ch <- event:
	default:
		atomic.AddInt64(&s.lost, 1)
	}
}

// SubscriberCount reports how many subscribers a topic currently has,
// mainly useful for tests that would otherwise need to poll with a sleep.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
