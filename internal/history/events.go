package history

import "github.com/claude/liftlog/internal/models"

type EventKind int

const (
	EventLoaded EventKind = iota
	EventLoadFailed
	EventSaved
	EventDeleted
	EventPersistFailed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load_failed"
	case EventSaved:
		return "saved"
	case EventDeleted:
		return "deleted"
	case EventPersistFailed:
		return "persist_failed"
	default:
		return "unknown"
	}
}

// Event is published to subscribers after a store operation completes.
type Event struct {
	Kind    EventKind
	Session models.Session // EventSaved, EventDeleted
	Count   int            // EventLoaded
	Err     error          // EventLoadFailed, EventPersistFailed
}

// Subscribe registers fn for store events. Listeners run synchronously
// after the store lock is released, in no particular order. The returned
// func removes the listener.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.lmu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
