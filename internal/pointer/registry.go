package pointer

import "sync"

// Target is an event destination with a stable identity.
type Target interface {
	TargetID() string
}

// TargetID is a Target identified by a plain string.
type TargetID string

// TargetID implements Target.
func (id TargetID) TargetID() string { return string(id) }

// Document is the target that receives every event, wherever it happened.
const Document TargetID = "document"

// Handler receives an event delivered to a target.
type Handler func(ev Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

type listener struct {
	id      ListenerID
	target  string
	kind    Kind
	handler Handler
}

// Registry holds pointer listeners keyed by target and event kind.
//
// Handlers may add or remove listeners while an event is being dispatched.
// A dispatch delivers to the listeners registered when it started; a
// listener removed mid-dispatch is not called afterwards.
type Registry struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners map[string][]*listener
	byID      map[ListenerID]*listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[string][]*listener),
		byID:      make(map[ListenerID]*listener),
	}
}

// Add registers handler for events of the given kind on target.
func (r *Registry) Add(target Target, kind Kind, handler Handler) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	l := &listener{
		id:      r.nextID,
		target:  target.TargetID(),
		kind:    kind,
		handler: handler,
	}
	r.listeners[l.target] = append(r.listeners[l.target], l)
	r.byID[l.id] = l
	return l.id
}

// Remove unregisters a listener. Returns false if it was not registered.
func (r *Registry) Remove(id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	list := r.listeners[l.target]
	for i, candidate := range list {
		if candidate.id == id {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.listeners, l.target)
	} else {
		r.listeners[l.target] = list
	}
	return true
}

// Dispatch delivers ev to the listeners on target registered for ev.Kind,
// in registration order. Returns the number of handlers called.
func (r *Registry) Dispatch(target Target, ev Event) int {
	r.mu.Lock()
	var matched []*listener
	for _, l := range r.listeners[target.TargetID()] {
		if l.kind == ev.Kind {
			matched = append(matched, l)
		}
	}
	r.mu.Unlock()

	called := 0
	for _, l := range matched {
		if !r.active(l.id) {
			continue
		}
		l.handler(ev)
		called++
	}
	return called
}

// Count returns the number of listeners on target for kind.
func (r *Registry) Count(target Target, kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, l := range r.listeners[target.TargetID()] {
		if l.kind == kind {
			n++
		}
	}
	return n
}

// Len returns the total number of registered listeners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Registry) active(id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok
}
