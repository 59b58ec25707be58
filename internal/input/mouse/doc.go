// Package mouse translates terminal mouse reports into pointer events.
//
// Terminals report mouse state as snapshots: a position plus the set of
// buttons currently held. The Translator compares each snapshot with the
// previous one and emits the pointer events a browser-like surface would
// produce:
//
//   - pointer movement becomes a move event
//   - the primary button going down or up becomes a down or up event
//   - with touch emulation on, the touch button behaves like a finger and
//     produces touch start, move and end events with a single contact
//
// Movement is always reported before a press or release in the same
// snapshot, so a press at a new position is seen at that position.
//
// # Click Detection
//
// Down events carry a click count in Detail. Presses close together in
// time and space count up to a triple click, then wrap:
//
//	tr := mouse.NewTranslator(mouse.DefaultConfig())
//	for _, ev := range tr.Translate(termEvent) {
//	    scene.Dispatch(ev)
//	}
//
// # Thread Safety
//
// Translator is safe for concurrent use.
package mouse
