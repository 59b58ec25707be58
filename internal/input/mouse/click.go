package mouse

import (
	"time"

	"github.com/dshills/draggable/internal/geom"
)

// clickTracker tracks click patterns for double/triple click detection.
type clickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastPos   geom.Point
	lastTime  time.Time
	lastCount int
}

func newClickTracker(maxTime time.Duration, maxDistance int) *clickTracker {
	return &clickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// recordClick records a click and returns the click count (1, 2, or 3).
// The count wraps back to 1 after 3.
func (t *clickTracker) recordClick(pos geom.Point, timestamp time.Time) int {
	if t.isPartOfSequence(pos, timestamp) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastPos = pos
	t.lastTime = timestamp
	return t.lastCount
}

func (t *clickTracker) isPartOfSequence(pos geom.Point, timestamp time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() {
		return false
	}

	// Negative elapsed time means clock skew; start a new sequence.
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}

	return manhattan(pos, t.lastPos) <= t.maxDistance
}

func (t *clickTracker) reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = geom.Point{}
}

func manhattan(a, b geom.Point) int {
	dx, dy := a.Sub(b)
	return abs(dx) + abs(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
