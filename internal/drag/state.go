package drag

import (
	"fmt"

	"github.com/dshills/draggable/internal/geom"
)

// State is the persisted position data of one element's drag session.
type State struct {
	// InitialPosition is recorded when the element is armed or reset.
	InitialPosition *geom.Point

	// StartDragPosition is the element position at the start of the
	// current or most recently completed gesture.
	StartDragPosition *geom.Point

	// CurrentDragPosition is the last computed position. It is always
	// the position most recently applied to the element.
	CurrentDragPosition *geom.Point

	// InitialMousePos is the pointer anchor of the active gesture; nil
	// when no gesture is active.
	InitialMousePos *geom.Point
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{
		InitialPosition:     clonePoint(s.InitialPosition),
		StartDragPosition:   clonePoint(s.StartDragPosition),
		CurrentDragPosition: clonePoint(s.CurrentDragPosition),
		InitialMousePos:     clonePoint(s.InitialMousePos),
	}
}

// Equal returns true if both states hold the same positions.
func (s State) Equal(other State) bool {
	return pointsEqual(s.InitialPosition, other.InitialPosition) &&
		pointsEqual(s.StartDragPosition, other.StartDragPosition) &&
		pointsEqual(s.CurrentDragPosition, other.CurrentDragPosition) &&
		pointsEqual(s.InitialMousePos, other.InitialMousePos)
}

// delta returns CurrentDragPosition - StartDragPosition, or zero if either
// is unknown.
func (s State) delta() Delta {
	return deltaBetween(s.StartDragPosition, s.CurrentDragPosition)
}

func (s State) String() string {
	return fmt.Sprintf("initial=%s start=%s current=%s anchor=%s",
		fmtPoint(s.InitialPosition), fmtPoint(s.StartDragPosition),
		fmtPoint(s.CurrentDragPosition), fmtPoint(s.InitialMousePos))
}

func deltaBetween(from, to *geom.Point) Delta {
	if from == nil || to == nil {
		return Delta{}
	}
	dx, dy := to.Sub(*from)
	return Delta{X: dx, Y: dy}
}

func clonePoint(p *geom.Point) *geom.Point {
	if p == nil {
		return nil
	}
	return p.Ptr()
}

func pointsEqual(a, b *geom.Point) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtPoint(p *geom.Point) string {
	if p == nil {
		return "-"
	}
	return p.String()
}

// firstPoint returns a copy of the first non-nil point.
func firstPoint(points ...*geom.Point) *geom.Point {
	for _, p := range points {
		if p != nil {
			return clonePoint(p)
		}
	}
	return nil
}
