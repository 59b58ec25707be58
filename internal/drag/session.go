package drag

import (
	"github.com/google/uuid"

	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/pointer"
)

// session is the drag state machine of one element.
type session struct {
	c      *Controller
	el     pointer.Target
	logger *logging.Logger

	// opts is the configuration of the latest Update. Handlers read it
	// when an event arrives, so they always see the current binding.
	opts  Options
	state State

	// armedHandle is the ID of the target holding the gesture-start
	// listeners; empty while unarmed.
	armedHandle string
	touchArmed  bool

	handleListeners   []pointer.ListenerID
	documentListeners []pointer.ListenerID

	// gesture identifies the active gesture in logs.
	gesture string
}

func (s *session) id() string {
	return s.el.TargetID()
}

func (s *session) disabled() bool {
	return s.opts.StopDragging
}

func (s *session) dragging() bool {
	return len(s.documentListeners) > 0
}

// update applies a new binding configuration.
func (s *session) update(opts Options) {
	s.opts = opts
	if s.disabled() {
		return
	}

	if opts.ResetInitialPos {
		s.initialize(nil)
		s.notify(phaseMove, Delta{}, pointer.Event{})
	}

	handle := opts.handle(s.el)
	handleChanged := s.armedHandle != handle.TargetID()
	if handleChanged || s.touchArmed != opts.AllowTouch {
		s.arm(handle, opts.AllowTouch)
		if handleChanged {
			s.initialize(nil)
			s.notify(phaseMove, Delta{}, pointer.Event{})
		}
	}
}

// arm registers gesture-start listeners on handle, replacing any
// registered on a previous handle.
func (s *session) arm(handle pointer.Target, allowTouch bool) {
	host := s.c.host
	s.removeHandleListeners()

	s.handleListeners = append(s.handleListeners,
		host.Listen(handle, pointer.KindDown, s.onDown))
	if allowTouch {
		s.handleListeners = append(s.handleListeners,
			host.Listen(handle, pointer.KindTouchStart, s.onTouchStart))
	}

	s.armedHandle = handle.TargetID()
	s.touchArmed = allowTouch
	s.logger.Debug("armed on %s (touch=%t)", s.armedHandle, allowTouch)
}

// disarm removes every listener. State is kept.
// A gesture in progress is abandoned and reported as ended to observers.
func (s *session) disarm() {
	if s.dragging() {
		s.logger.WithField("gesture", s.gesture).Debug("gesture abandoned")
		s.gesture = ""
		for _, o := range s.c.observers {
			o.GestureEnded(s.id())
		}
	}
	s.removeHandleListeners()
	s.removeDocumentListeners()
	s.armedHandle = ""
	s.touchArmed = false
	s.logger.Debug("disarmed")
}

func (s *session) removeHandleListeners() {
	for _, id := range s.handleListeners {
		s.c.host.Unlisten(id)
	}
	s.handleListeners = nil
}

func (s *session) listenDocument(allowTouch bool) {
	host := s.c.host
	doc := host.Document()
	s.removeDocumentListeners()

	s.documentListeners = append(s.documentListeners,
		host.Listen(doc, pointer.KindMove, s.onMove),
		host.Listen(doc, pointer.KindUp, s.onUp),
	)
	if allowTouch {
		s.documentListeners = append(s.documentListeners,
			host.Listen(doc, pointer.KindTouchMove, s.onTouchMove),
			host.Listen(doc, pointer.KindTouchEnd, s.onTouchEnd),
		)
	}
}

func (s *session) removeDocumentListeners() {
	for _, id := range s.documentListeners {
		s.c.host.Unlisten(id)
	}
	s.documentListeners = nil
}

// initialize resolves the initial position and seeds the state with it.
// ev, when given, becomes the pointer anchor.
func (s *session) initialize(ev *pointer.Event) {
	initial := firstPoint(s.opts.InitialPosition, s.state.InitialPosition, s.renderedPosition())

	s.state = State{
		InitialPosition:     clonePoint(initial),
		StartDragPosition:   clonePoint(initial),
		CurrentDragPosition: clonePoint(initial),
		InitialMousePos:     anchorOf(ev),
	}
	s.apply()
	s.logger.Debug("initialized: %s", s.state)
}

func (s *session) onDown(ev pointer.Event) {
	if s.disabled() {
		return
	}

	s.state.InitialMousePos = anchorOf(&ev)
	s.gesture = uuid.NewString()
	s.logger.WithField("gesture", s.gesture).Debug("gesture start at (%d,%d)", ev.X, ev.Y)

	// A down while already dragging (a second button, or a touch after a
	// mouse press) continues the same gesture for observers.
	started := !s.dragging()

	s.notify(phaseStart, Delta{}, ev)
	s.listenDocument(s.opts.AllowTouch)

	if started {
		for _, o := range s.c.observers {
			o.GestureStarted(s.id())
		}
	}
}

func (s *session) onMove(ev pointer.Event) {
	if s.disabled() {
		return
	}

	if s.state.StartDragPosition == nil || s.state.InitialMousePos == nil {
		s.initialize(&ev)
	}
	if s.state.StartDragPosition == nil || s.state.InitialMousePos == nil {
		// Element is not laid out; nothing to move.
		return
	}

	anchor := *s.state.InitialMousePos
	candidate := s.state.StartDragPosition.Add(ev.X-anchor.Left, ev.Y-anchor.Top)

	bounds, bounded, ok := s.boundingRect()
	if !ok {
		return
	}

	clamped := false
	if bounded {
		size := s.c.host.Rect(s.el).Size()
		p := geom.Clamp(size, bounds, candidate, s.opts.BoundingRectMargin)
		clamped = p != candidate
		candidate = p
	}

	s.state.CurrentDragPosition = candidate.Ptr()
	s.apply()
	s.notify(phaseMove, s.state.delta(), ev)

	for _, o := range s.c.observers {
		o.PositionChanged(s.id(), clamped)
	}
}

func (s *session) onUp(ev pointer.Event) {
	if s.disabled() {
		return
	}

	origin := clonePoint(s.state.StartDragPosition)

	// The rendered geometry is authoritative for the committed position.
	// An element that is no longer laid out keeps its last computed one.
	final := s.renderedPosition()
	if final == nil {
		final = clonePoint(s.state.CurrentDragPosition)
	}

	s.state.InitialMousePos = nil
	s.state.StartDragPosition = clonePoint(final)
	s.state.CurrentDragPosition = clonePoint(final)
	s.removeDocumentListeners()

	s.logger.WithField("gesture", s.gesture).Debug("gesture end: %s", s.state)
	s.gesture = ""

	s.notify(phaseEnd, deltaBetween(origin, final), ev)

	for _, o := range s.c.observers {
		o.GestureEnded(s.id())
	}
}

func (s *session) onTouchStart(ev pointer.Event) {
	if m, ok := pointer.Synthesize(ev); ok {
		s.onDown(m)
	}
}

func (s *session) onTouchMove(ev pointer.Event) {
	if m, ok := pointer.Synthesize(ev); ok {
		s.onMove(m)
	}
}

func (s *session) onTouchEnd(ev pointer.Event) {
	if m, ok := pointer.Synthesize(ev); ok {
		s.onUp(m)
	}
}

// boundingRect returns the rectangle the element is confined to.
// bounded is false when no bounding is configured. ok is false when the
// bounding element is not laid out, in which case the move is skipped.
func (s *session) boundingRect() (rect geom.Rect, bounded, ok bool) {
	if s.opts.BoundingRect != nil {
		return *s.opts.BoundingRect, true, true
	}
	if s.opts.BoundingElement != nil {
		r := s.c.host.Rect(s.opts.BoundingElement)
		if r.IsDegenerate() {
			return geom.Rect{}, false, false
		}
		return r, true, true
	}
	return geom.Rect{}, false, true
}

// renderedPosition returns the element's rendered top-left corner, or nil
// if it is not laid out.
func (s *session) renderedPosition() *geom.Point {
	r := s.c.host.Rect(s.el)
	if r.IsDegenerate() {
		return nil
	}
	return r.Position().Ptr()
}

// apply moves the element to the current position.
func (s *session) apply() {
	if s.state.CurrentDragPosition == nil {
		return
	}
	s.c.host.Place(s.el, *s.state.CurrentDragPosition)
}

func (s *session) notify(p phase, delta Delta, ev pointer.Event) {
	cb := s.opts.callback(p)
	if cb == nil {
		return
	}
	cb(delta, clonePoint(s.state.CurrentDragPosition), ev)
}

func anchorOf(ev *pointer.Event) *geom.Point {
	if ev == nil {
		return nil
	}
	return &geom.Point{Left: ev.X, Top: ev.Y}
}
