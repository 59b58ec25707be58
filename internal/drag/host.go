package drag

import (
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/pointer"
)

// Geometry reports the live rectangle of a target. A degenerate rectangle
// means the target is not currently laid out.
type Geometry interface {
	Rect(t pointer.Target) geom.Rect
}

// Placer moves a target so its top-left corner is at p.
type Placer interface {
	Place(t pointer.Target, p geom.Point)
}

// Events registers pointer listeners with the host.
type Events interface {
	// Listen registers h for events of kind k delivered to t.
	Listen(t pointer.Target, k pointer.Kind, h pointer.Handler) pointer.ListenerID

	// Unlisten removes a listener registered with Listen.
	Unlisten(id pointer.ListenerID)

	// Document returns the target that receives every event.
	Document() pointer.Target
}

// Host is everything the controller needs from the surface it runs on.
type Host interface {
	Geometry
	Placer
	Events
}

// Observer is told about gesture activity. Every GestureStarted is followed
// by exactly one GestureEnded, including for gestures cut short by Detach.
// Observers must not block.
type Observer interface {
	GestureStarted(element string)
	PositionChanged(element string, clamped bool)
	GestureEnded(element string)
}
