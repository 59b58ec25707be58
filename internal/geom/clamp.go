package geom

// Clamp returns the position nearest to desired that keeps a rectangle of
// the given size inside bounds shrunk by margin.
//
// Each axis is resolved on its own. The leading edge (top, left) is checked
// before the trailing edge and always wins, so an element larger than the
// available span is pinned flush to the top-left of the shrunk region no
// matter where it was dropped. Only translation is applied; the size never
// changes.
func Clamp(size Size, bounds Rect, desired Point, margin Margin) Point {
	boundary := bounds.Inset(margin)
	return Point{
		Left: clampAxis(desired.Left, size.Width, boundary.Left, boundary.Right),
		Top:  clampAxis(desired.Top, size.Height, boundary.Top, boundary.Bottom),
	}
}

// clampAxis clamps the span [start, start+extent) into [lo, hi).
func clampAxis(start, extent, lo, hi int) int {
	if start < lo {
		return lo
	}
	if start+extent > hi {
		// Snapping the trailing edge may push the leading edge past lo
		// when the span does not fit; the leading edge wins.
		return max(hi-extent, lo)
	}
	return start
}

// Fits returns true if a rectangle of the given size can be placed inside
// bounds shrunk by margin without being pinned.
func Fits(size Size, bounds Rect, margin Margin) bool {
	boundary := bounds.Inset(margin)
	return size.Width <= boundary.Right-boundary.Left &&
		size.Height <= boundary.Bottom-boundary.Top
}
