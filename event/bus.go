package event

import (
	"sync"

	"github.com/google/uuid"
)

// Listener receives events emitted on a bus channel.
type Listener func(Event)

// Guard validates an event before it is dispatched. A non-nil error aborts
// the emission: no listener runs and Emit returns the error.
type Guard func(Event) error

// ListenerID identifies a subscription for removal with Off.
type ListenerID uuid.UUID

// String returns the canonical form of the id.
func (id ListenerID) String() string { return uuid.UUID(id).String() }

type subscription struct {
	id       ListenerID
	listener Listener
}

type guardEntry struct {
	id    ListenerID
	guard Guard
}

// Bus is a named-channel publish/subscribe registry. Listeners run
// synchronously on the emitting goroutine, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	guards map[string][]guardEntry
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[string][]subscription),
		guards: make(map[string][]guardEntry),
	}
}

// On subscribes listener to name and returns its id.
func (b *Bus) On(name string, listener Listener) ListenerID {
	id := ListenerID(uuid.New())
	b.mu.Lock()
	b.subs[name] = append(b.subs[name], subscription{id: id, listener: listener})
	b.mu.Unlock()
	return id
}

// Off removes the subscription id from name. It reports whether a
// subscription was removed.
func (b *Bus) Off(name string, id ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		// copy-on-write so in-flight snapshots stay intact
		next := make([]subscription, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, name)
		} else {
			b.subs[name] = next
		}
		return true
	}
	return false
}

// Guard installs a pre-dispatch check on name and returns its id for
// removal with Unguard.
func (b *Bus) Guard(name string, g Guard) ListenerID {
	id := ListenerID(uuid.New())
	b.mu.Lock()
	b.guards[name] = append(b.guards[name], guardEntry{id: id, guard: g})
	b.mu.Unlock()
	return id
}

// Unguard removes the guard id from name. It reports whether a guard was
// removed.
func (b *Bus) Unguard(name string, id ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	guards := b.guards[name]
	for i, g := range guards {
		if g.id != id {
			continue
		}
		next := make([]guardEntry, 0, len(guards)-1)
		next = append(next, guards[:i]...)
		next = append(next, guards[i+1:]...)
		if len(next) == 0 {
			delete(b.guards, name)
		} else {
			b.guards[name] = next
		}
		return true
	}
	return false
}

// Emit runs the guards of name, then delivers ev to a snapshot of the
// listeners subscribed at the time of the call. Listeners subscribed while
// the dispatch is in progress do not see ev.
func (b *Bus) Emit(name string, ev Event) error {
	b.mu.RLock()
	guards := b.guards[name]
	subs := b.subs[name]
	b.mu.RUnlock()

	for _, g := range guards {
		if err := g.guard(ev); err != nil {
			return err
		}
	}
	for _, s := range subs {
		s.listener(ev)
	}
	return nil
}

// ListenerCount returns the number of listeners subscribed to name.
func (b *Bus) ListenerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// GuardCount returns the number of guards installed on name.
func (b *Bus) GuardCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.guards[name])
}
