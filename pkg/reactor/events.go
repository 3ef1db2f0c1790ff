package reactor

import (
	"time"

	"github.com/google/uuid"
)

// EventMutation is the event name emitted after every successful mutation.
const EventMutation = "mutation"

// MutationEvent describes one successful mutation call.
type MutationEvent struct {
	// ID is unique per event.
	ID string `json:"id"`

	// Seq increases by one per event of the engine, starting at 1.
	Seq uint64 `json:"seq"`

	// Name is the mutation name.
	Name string `json:"name"`

	// Payload is the payload the mutation was called with.
	Payload any `json:"payload"`

	Time time.Time `json:"time"`
}

// Handler receives events.
type Handler func(MutationEvent)

type subscription struct {
	id uint64
	fn Handler
}

// emitter dispatches events synchronously, in subscription order.
type emitter struct {
	lastSub uint64
	seq     uint64
	subs    map[string][]subscription
}

// On subscribes fn to event and returns a function that removes the
// subscription. Handlers run synchronously on the committing goroutine,
// once per event, in call order.
func (e *Engine) On(event string, fn Handler) (off func()) {
	return e.events.on(event, fn)
}

func (em *emitter) on(event string, fn Handler) func() {
	if em.subs == nil {
		em.subs = make(map[string][]subscription)
	}
	em.lastSub++
	id := em.lastSub
	em.subs[event] = append(em.subs[event], subscription{id: id, fn: fn})

	return func() {
		subs := em.subs[event]
		for i, s := range subs {
			if s.id == id {
				// Copy so an emit in progress keeps its snapshot.
				next := make([]subscription, 0, len(subs)-1)
				next = append(next, subs[:i]...)
				em.subs[event] = append(next, subs[i+1:]...)
				return
			}
		}
	}
}

func (em *emitter) emitMutation(name string, payload any) MutationEvent {
	em.seq++
	ev := MutationEvent{
		ID:      uuid.NewString(),
		Seq:     em.seq,
		Name:    name,
		Payload: payload,
		Time:    time.Now(),
	}
	for _, s := range em.subs[EventMutation] {
		s.fn(ev)
	}
	return ev
}
