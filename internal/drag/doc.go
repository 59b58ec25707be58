// Package drag implements pointer-driven dragging of a single element.
//
// A Controller owns one session per element. Hosts call Attach once and
// Update on every re-render with the element's current Options; both are the
// same operation and are safe to repeat. The first Update arms the element:
// a pointer-down listener (and touch-start, when touch is allowed) is
// registered on its handle, and the element's position is initialized.
//
// # Gesture lifecycle
//
//	down  -> record the pointer anchor, fire OnDragStart, listen for move/up
//	         on the host's document target
//	move  -> candidate = start + (pointer - anchor), clamped to the bounding
//	         rectangle if one is configured, applied, OnPositionChange
//	up    -> commit the element's rendered position, forget the anchor,
//	         stop listening on the document, OnDragEnd
//
// Touch events are translated into the equivalent pointer events using the
// last contact of the event's touch list and follow the same path.
//
// # Disabled elements
//
// While Options.StopDragging is set every update and every pointer event is
// ignored. Nothing is lost: once the flag clears the element continues from
// the state it had.
//
// # Positions
//
// Initial positions are resolved with the precedence
// Options.InitialPosition > previously recorded initial position >
// rendered geometry. When the host reports a degenerate rectangle for the
// element (not laid out) no position is produced and nothing changes.
//
// # Threading
//
// A Controller is not safe for concurrent use. Hosts drive it from their
// event loop; callbacks run synchronously inside the event that caused them
// and must not call Update for the same element.
package drag
