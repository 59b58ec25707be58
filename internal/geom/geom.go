// Package geom provides the integer screen geometry shared by the drag
// controller and its hosts: points, sizes, rectangles, margins and the
// boundary clamp used to keep a dragged element inside a region.
//
// Coordinates are terminal cells. Rows grow downward, columns grow to the
// right. Rectangles are half-open: Top and Left are inclusive, Bottom and
// Right are exclusive, so Width() == Right-Left and Height() == Bottom-Top.
package geom

import "fmt"

// Point is a top-left coordinate in screen space.
type Point struct {
	Left int
	Top  int
}

// Pt creates a point.
func Pt(left, top int) Point {
	return Point{Left: left, Top: top}
}

// Add returns the point translated by dx, dy.
func (p Point) Add(dx, dy int) Point {
	return Point{Left: p.Left + dx, Top: p.Top + dy}
}

// Sub returns the offset from other to p.
func (p Point) Sub(other Point) (dx, dy int) {
	return p.Left - other.Left, p.Top - other.Top
}

// Ptr returns a pointer to a copy of p.
func (p Point) Ptr() *Point {
	return &p
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Left, p.Top)
}

// Size is the extent of a rectangle.
type Size struct {
	Width  int
	Height int
}

// Margin is a per-side inset. Sides left at zero are not inset.
type Margin struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// IsZero returns true if no side is inset.
func (m Margin) IsZero() bool {
	return m == Margin{}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Top    int // First row (inclusive)
	Left   int // First column (inclusive)
	Bottom int // Last row (exclusive)
	Right  int // Last column (exclusive)
}

// NewRect creates a rectangle from its edges.
func NewRect(top, left, bottom, right int) Rect {
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}
}

// RectAt creates a rectangle with its top-left corner at p.
func RectAt(p Point, s Size) Rect {
	return Rect{Top: p.Top, Left: p.Left, Bottom: p.Top + s.Height, Right: p.Left + s.Width}
}

// Width returns the width of the rectangle.
func (r Rect) Width() int {
	if r.Right <= r.Left {
		return 0
	}
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() int {
	if r.Bottom <= r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// Size returns the rectangle extent.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Position returns the top-left corner.
func (r Rect) Position() Point {
	return Point{Left: r.Left, Top: r.Top}
}

// IsDegenerate returns true if the rectangle has no area. Hosts report
// degenerate rectangles for elements that are not laid out.
func (r Rect) IsDegenerate() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains returns true if the cell at (x, y) is inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return y >= r.Top && y < r.Bottom && x >= r.Left && x < r.Right
}

// ContainsRect returns true if other is entirely within r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Top >= r.Top && other.Bottom <= r.Bottom &&
		other.Left >= r.Left && other.Right <= r.Right
}

// Inset returns the rectangle shrunk by m on each side.
func (r Rect) Inset(m Margin) Rect {
	return Rect{
		Top:    r.Top + m.Top,
		Left:   r.Left + m.Left,
		Bottom: r.Bottom - m.Bottom,
		Right:  r.Right - m.Right,
	}
}

// MoveTo returns the rectangle translated so its top-left corner is p.
func (r Rect) MoveTo(p Point) Rect {
	return RectAt(p, r.Size())
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.Left, r.Top, r.Width(), r.Height())
}
