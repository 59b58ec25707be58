// Package hook runs Lua scripts as drag callbacks.
//
// A script defines any of three global functions:
//
//	function on_drag_start(delta, position, event) end
//	function on_position_change(delta, position, event) end
//	function on_drag_end(delta, position, event) end
//
// delta is a table {x=, y=}. position is a table {left=, top=}, or nil
// before a position is known. event is a table {kind=, x=, y=, source=,
// detail=}; kind is "none" when the change was caused by a
// configuration update rather than by the pointer.
//
// Scripts also get a "draggable" table:
//
//	draggable.element      -- id of the box the script is attached to
//	draggable.log(msg)     -- write msg to the log
//	draggable.status(msg)  -- show msg on the status line
//
// Scripts run with only the base, table, string and math libraries. A
// runtime error inside a callback is logged and does not stop the drag.
package hook
