// Package scene holds the boxes shown on screen. It owns their live
// geometry, routes pointer events to them and draws them.
//
// A Scene implements drag.Host: box IDs and their title bars are pointer
// targets, and the whole screen is the document target every event
// bubbles up to.
package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/pointer"
	"github.com/dshills/draggable/internal/renderer/core"
)

const titleSuffix = "/title"

// TitleTarget returns the target of a box's title bar.
func TitleTarget(id string) pointer.TargetID {
	return pointer.TargetID(id + titleSuffix)
}

// Box is a rectangle drawn with a border and a title bar on its top row.
type Box struct {
	ID     string
	Label  string
	Rect   geom.Rect
	Color  core.Color
	Hidden bool
}

// TargetID implements pointer.Target.
func (b *Box) TargetID() string { return b.ID }

// Title returns the title bar target.
func (b *Box) Title() pointer.TargetID { return TitleTarget(b.ID) }

// titleRect returns the rectangle of the top row.
func (b *Box) titleRect() geom.Rect {
	return geom.NewRect(b.Rect.Top, b.Rect.Left, b.Rect.Top+1, b.Rect.Right)
}

// Scene is a set of boxes in stacking order.
type Scene struct {
	boxes    []*Box // bottom to top
	byID     map[string]*Box
	registry *pointer.Registry
	logger   *logging.Logger

	width, height int
	status        string
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the scene logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty scene of the given size.
func New(width, height int, opts ...Option) *Scene {
	s := &Scene{
		byID:     make(map[string]*Box),
		registry: pointer.NewRegistry(),
		logger:   logging.Discard(),
		width:    width,
		height:   height,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("scene")
	return s
}

// Add places b on top of the stack. A box without an ID gets a generated
// one. The stored box is returned.
func (s *Scene) Add(b Box) (*Box, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.ID == string(pointer.Document) || strings.HasSuffix(b.ID, titleSuffix) {
		return nil, fmt.Errorf("%w: %q", ErrReservedID, b.ID)
	}
	if _, ok := s.byID[b.ID]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateBox, b.ID)
	}
	if b.Rect.Width() < 2 || b.Rect.Height() < 2 {
		return nil, fmt.Errorf("%w: %q is %dx%d", ErrBoxTooSmall, b.ID, b.Rect.Width(), b.Rect.Height())
	}

	box := &b
	s.boxes = append(s.boxes, box)
	s.byID[box.ID] = box
	s.logger.Debug("added box %s at %s", box.ID, box.Rect)
	return box, nil
}

// Remove deletes a box. Listeners registered on it are left in place and
// simply never fire again.
func (s *Scene) Remove(id string) bool {
	box, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	s.boxes = slices.DeleteFunc(s.boxes, func(b *Box) bool { return b == box })
	return true
}

// Box returns the box with the given ID.
func (s *Scene) Box(id string) (*Box, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Boxes returns the boxes from bottom to top.
func (s *Scene) Boxes() []*Box {
	return slices.Clone(s.boxes)
}

// Raise moves a box to the top of the stack.
func (s *Scene) Raise(id string) {
	box, ok := s.byID[id]
	if !ok || s.boxes[len(s.boxes)-1] == box {
		return
	}
	s.boxes = slices.DeleteFunc(s.boxes, func(b *Box) bool { return b == box })
	s.boxes = append(s.boxes, box)
}

// SetHidden shows or hides a box. Hidden boxes have no geometry.
func (s *Scene) SetHidden(id string, hidden bool) error {
	box, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBoxNotFound, id)
	}
	box.Hidden = hidden
	return nil
}

// Resize sets the screen size.
func (s *Scene) Resize(width, height int) {
	s.width, s.height = width, height
}

// Size returns the screen size.
func (s *Scene) Size() (width, height int) {
	return s.width, s.height
}

// SetStatus sets the text of the status line.
func (s *Scene) SetStatus(text string) {
	s.status = text
}

// Status returns the text of the status line.
func (s *Scene) Status() string {
	return s.status
}

// Rect returns the live rectangle of a target. Hidden and unknown targets
// have a zero rectangle.
func (s *Scene) Rect(t pointer.Target) geom.Rect {
	if t == nil {
		return geom.Rect{}
	}
	id := t.TargetID()
	if id == string(pointer.Document) {
		return geom.NewRect(0, 0, s.height, s.width)
	}

	title := false
	if base, ok := strings.CutSuffix(id, titleSuffix); ok {
		id, title = base, true
	}
	box, ok := s.byID[id]
	if !ok || box.Hidden {
		return geom.Rect{}
	}
	if title {
		return box.titleRect()
	}
	return box.Rect
}

// Place moves a box so its top-left corner is at p. Other targets cannot
// be moved.
func (s *Scene) Place(t pointer.Target, p geom.Point) {
	if t == nil {
		return
	}
	box, ok := s.byID[t.TargetID()]
	if !ok {
		return
	}
	box.Rect = box.Rect.MoveTo(p)
}

// Listen implements drag.Events.
func (s *Scene) Listen(t pointer.Target, k pointer.Kind, h pointer.Handler) pointer.ListenerID {
	return s.registry.Add(t, k, h)
}

// Unlisten implements drag.Events.
func (s *Scene) Unlisten(id pointer.ListenerID) {
	s.registry.Remove(id)
}

// Draggable returns true if a pointer-down listener is registered on the
// box or its title bar.
func (s *Scene) Draggable(id string) bool {
	return s.registry.Count(pointer.TargetID(id), pointer.KindDown)+
		s.registry.Count(TitleTarget(id), pointer.KindDown) > 0
}

// Listeners returns the number of registered pointer listeners.
func (s *Scene) Listeners() int {
	return s.registry.Len()
}

// Document implements drag.Events.
func (s *Scene) Document() pointer.Target {
	return pointer.Document
}

// HitTest returns the topmost visible box containing (x, y).
func (s *Scene) HitTest(x, y int) (*Box, bool) {
	for i := len(s.boxes) - 1; i >= 0; i-- {
		b := s.boxes[i]
		if !b.Hidden && b.Rect.Contains(x, y) {
			return b, true
		}
	}
	return nil, false
}

// Path returns the targets an event at (x, y) bubbles through, innermost
// first. The document is always last.
func (s *Scene) Path(x, y int) []pointer.Target {
	box, ok := s.HitTest(x, y)
	if !ok {
		return []pointer.Target{pointer.Document}
	}
	if box.titleRect().Contains(x, y) {
		return []pointer.Target{box.Title(), box, pointer.Document}
	}
	return []pointer.Target{box, pointer.Document}
}

// Dispatch delivers ev along its bubbling path. Gesture-start events
// raise the box under the pointer first. It returns the number of
// listeners called.
func (s *Scene) Dispatch(ev pointer.Event) int {
	x, y := ev.X, ev.Y
	if ev.Kind.IsTouch() {
		m, ok := pointer.Synthesize(ev)
		if !ok {
			return 0
		}
		x, y = m.X, m.Y
	}

	if ev.Kind == pointer.KindDown || ev.Kind == pointer.KindTouchStart {
		if box, ok := s.HitTest(x, y); ok {
			s.Raise(box.ID)
		}
	}

	called := 0
	for _, t := range s.Path(x, y) {
		called += s.registry.Dispatch(t, ev)
	}
	return called
}
