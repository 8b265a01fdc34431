// Package events provides a typed publish/subscribe bus for store changes.
package events

import (
	"sync"
)

// Topic binds an event kind to the type of its payload. Publishing or
// subscribing through a Topic makes payload shape mismatches compile errors.
type Topic[T any] struct {
	kind Kind
}

// Kind returns the event kind of the topic.
func (t Topic[T]) Kind() Kind {
	return t.kind
}

type subscription struct {
	id int
	fn func(any)
}

// Bus fans published events out to subscribers. Handlers run synchronously,
// in subscription order, on the publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Kind][]subscription
	all    []subscriptionAll
}

type subscriptionAll struct {
	id int
	fn func(Kind)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Kind][]subscription),
	}
}

// Subscribe registers fn for events on topic and returns a function that
// removes the subscription.
func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic.kind] = append(b.subs[topic.kind], subscription{
		id: id,
		fn: func(payload any) { fn(payload.(T)) },
	})

	return func() { b.remove(topic.kind, id) }
}

// SubscribeAll registers fn for every published event. Only the kind is
// delivered; listeners read current state back from its owner.
func (b *Bus) SubscribeAll(fn func(Kind)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscriptionAll{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.all {
			if s.id == id {
				b.all = append(b.all[:i:i], b.all[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every subscriber of topic, then to every
// SubscribeAll listener.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[topic.kind]...)
	all := append([]subscriptionAll(nil), b.all...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(payload)
	}
	for _, s := range all {
		s.fn(topic.kind)
	}
}

func (b *Bus) remove(kind Kind, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
