package drag

import (
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/pointer"
)

// Delta is the signed offset of the element from where the gesture started.
type Delta struct {
	X int
	Y int
}

// IsZero returns true for a zero-length delta.
func (d Delta) IsZero() bool {
	return d.X == 0 && d.Y == 0
}

// Callback is notified about position changes. position is nil until a
// position has been computed. ev is the pointer event that caused the
// change; it is the zero Event for changes caused by Update.
type Callback func(delta Delta, position *geom.Point, ev pointer.Event)

// Options configures dragging for one element. Hosts pass a fresh value on
// every Update. The zero value enables unconstrained mouse dragging of the
// element itself with no callbacks.
type Options struct {
	// Handle is the target that starts a gesture. Defaults to the element.
	Handle pointer.Target

	// AllowTouch additionally accepts touch gestures.
	AllowTouch bool

	// ResetInitialPos re-initializes the element position on this update.
	ResetInitialPos bool

	// InitialPosition overrides the position recorded or rendered.
	InitialPosition *geom.Point

	// BoundingRect constrains the element to a fixed rectangle.
	BoundingRect *geom.Rect

	// BoundingElement constrains the element to another target's live
	// rectangle. Ignored when BoundingRect is set.
	BoundingElement pointer.Target

	// BoundingRectMargin shrinks the bounding rectangle on each side.
	BoundingRectMargin geom.Margin

	// StopDragging disables the element until cleared.
	StopDragging bool

	// OnDragStart fires when a gesture begins.
	OnDragStart Callback

	// OnPositionChange fires on every move and whenever Update
	// (re-)initializes the position.
	OnPositionChange Callback

	// OnDragEnd fires when a gesture ends.
	OnDragEnd Callback
}

// handle returns the gesture target for el.
func (o Options) handle(el pointer.Target) pointer.Target {
	if o.Handle != nil {
		return o.Handle
	}
	return el
}

// phase selects which callback a notification goes to.
type phase uint8

const (
	phaseStart phase = iota + 1
	phaseMove
	phaseEnd
)

func (p phase) String() string {
	switch p {
	case phaseStart:
		return "start"
	case phaseMove:
		return "move"
	case phaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// callback returns the configured callback for the phase, or nil.
func (o Options) callback(p phase) Callback {
	switch p {
	case phaseStart:
		return o.OnDragStart
	case phaseEnd:
		return o.OnDragEnd
	default:
		return o.OnPositionChange
	}
}
