package drag

import (
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/pointer"
)

// Controller manages drag sessions for the elements of one host.
type Controller struct {
	host      Host
	logger    *logging.Logger
	observers []Observer

	// Sessions keyed by element identity. Sessions are never removed, so
	// an element that is detached and attached again keeps its state.
	sessions map[string]*session
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for gesture tracing.
func WithLogger(l *logging.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver adds an observer notified about gesture activity.
func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// NewController creates a controller driving elements of host.
func NewController(host Host, opts ...ControllerOption) *Controller {
	c := &Controller{
		host:     host,
		logger:   logging.Discard(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("drag")
	return c
}

// Attach enables dragging for el. It is the same operation as Update.
func (c *Controller) Attach(el pointer.Target, opts Options) {
	c.Update(el, opts)
}

// Update applies opts to el. Hosts call it on every re-render; listeners
// are registered only when the element's handle is not armed yet.
func (c *Controller) Update(el pointer.Target, opts Options) {
	if el == nil {
		return
	}
	c.sessionFor(el).update(opts)
}

// Detach removes every listener registered for el. The element's state is
// kept and a later Attach resumes from it.
func (c *Controller) Detach(el pointer.Target) {
	if el == nil {
		return
	}
	if s, ok := c.sessions[el.TargetID()]; ok {
		s.disarm()
	}
}

// State returns a copy of el's persisted state.
func (c *Controller) State(el pointer.Target) (State, bool) {
	if el == nil {
		return State{}, false
	}
	s, ok := c.sessions[el.TargetID()]
	if !ok {
		return State{}, false
	}
	return s.state.Clone(), true
}

// Dragging returns true while a gesture is active on el.
func (c *Controller) Dragging(el pointer.Target) bool {
	if el == nil {
		return false
	}
	s, ok := c.sessions[el.TargetID()]
	return ok && s.dragging()
}

// Armed returns true if el has listeners registered.
func (c *Controller) Armed(el pointer.Target) bool {
	if el == nil {
		return false
	}
	s, ok := c.sessions[el.TargetID()]
	return ok && s.armedHandle != ""
}

// Elements returns the IDs of every element with a session.
func (c *Controller) Elements() []string {
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (c *Controller) sessionFor(el pointer.Target) *session {
	id := el.TargetID()
	s, ok := c.sessions[id]
	if !ok {
		s = &session{
			c:      c,
			el:     el,
			logger: c.logger.WithField("element", id),
		}
		c.sessions[id] = s
	}
	return s
}
