// Package pointer defines the pointer input events consumed by the drag
// controller and the listener registry hosts use to deliver them.
//
// Events are addressed to targets. A target is anything with a stable
// identity: a scene element, a handle inside it, or the document target
// that receives every event regardless of where it happened.
package pointer

import (
	"fmt"
	"time"
)

// Kind identifies the type of pointer event.
type Kind uint8

const (
	// KindNone indicates no event.
	KindNone Kind = iota
	// KindDown indicates a primary button press.
	KindDown
	// KindMove indicates pointer movement.
	KindMove
	// KindUp indicates a primary button release.
	KindUp
	// KindTouchStart indicates a finger touching the surface.
	KindTouchStart
	// KindTouchMove indicates a finger moving on the surface.
	KindTouchMove
	// KindTouchEnd indicates a finger leaving the surface.
	KindTouchEnd
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindMove:
		return "move"
	case KindUp:
		return "up"
	case KindTouchStart:
		return "touchstart"
	case KindTouchMove:
		return "touchmove"
	case KindTouchEnd:
		return "touchend"
	default:
		return "none"
	}
}

// IsTouch returns true for touch event kinds.
func (k Kind) IsTouch() bool {
	return k == KindTouchStart || k == KindTouchMove || k == KindTouchEnd
}

// Source identifies the device an event originated from.
type Source uint8

const (
	// SourceMouse is a mouse or mouse-like pointer.
	SourceMouse Source = iota
	// SourceTouch is a touch surface, or a button emulating one.
	SourceTouch
)

// String returns a string representation of the source.
func (s Source) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "mouse"
}

// Touch is one contact point of a touch event.
type Touch struct {
	ID int
	X  int
	Y  int
}

// Event is a pointer input event.
type Event struct {
	// Kind is the type of event.
	Kind Kind

	// X and Y are the pointer coordinates. Unused for touch events,
	// whose coordinates live in the touch lists.
	X int
	Y int

	// Touches lists every contact currently on the surface.
	Touches []Touch

	// ChangedTouches lists the contacts that changed in this event.
	ChangedTouches []Touch

	// Detail is the click count of a down event: 1 for a single click,
	// 2 for a double click, 3 for a triple click.
	Detail int

	// Source is the device the event came from.
	Source Source

	// Time is when the event occurred.
	Time time.Time
}

func (e Event) String() string {
	if e.Kind.IsTouch() {
		return fmt.Sprintf("%s touches=%d changed=%d", e.Kind, len(e.Touches), len(e.ChangedTouches))
	}
	return fmt.Sprintf("%s (%d,%d)", e.Kind, e.X, e.Y)
}

// lastTouch returns the final entry of a touch list.
func lastTouch(touches []Touch) (Touch, bool) {
	if len(touches) == 0 {
		return Touch{}, false
	}
	return touches[len(touches)-1], true
}

// Synthesize translates a touch event into the equivalent mouse event.
//
// Touch start and end use the last changed contact; touch move uses the
// last active contact. The result keeps the original timestamp and source.
// Returns false for non-touch events and for touch events without a usable
// contact.
func Synthesize(ev Event) (Event, bool) {
	var (
		kind  Kind
		touch Touch
		ok    bool
	)

	switch ev.Kind {
	case KindTouchStart:
		kind = KindDown
		touch, ok = lastTouch(ev.ChangedTouches)
	case KindTouchMove:
		kind = KindMove
		touch, ok = lastTouch(ev.Touches)
	case KindTouchEnd:
		kind = KindUp
		touch, ok = lastTouch(ev.ChangedTouches)
	default:
		return Event{}, false
	}

	if !ok {
		return Event{}, false
	}

	return Event{
		Kind:   kind,
		X:      touch.X,
		Y:      touch.Y,
		Source: ev.Source,
		Time:   ev.Time,
	}, true
}
