// Package backend provides the terminal abstraction the scene draws on and
// reads input from.
package backend

import (
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/renderer/core"
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields. Buttons is the full set of buttons held at the
	// time of the report; press and release are derived by comparing
	// consecutive reports.
	MouseX, MouseY int
	Buttons        ButtonMask

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for the keys the application binds.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyCtrlC
	KeyCtrlL
	KeyCtrlR
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// ButtonMask is the set of mouse buttons held in a mouse report.
type ButtonMask int

const (
	ButtonNone    ButtonMask = 0
	ButtonPrimary ButtonMask = 1 << (iota - 1)
	ButtonSecondary
	ButtonMiddle
	WheelUp
	WheelDown
)

// Has returns true if the mask contains every button in b.
func (m ButtonMask) Has(b ButtonMask) bool {
	return b != ButtonNone && m&b == b
}

// Backend defines the interface for terminal backends.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// OnResize registers a callback for terminal resize events.
	OnResize(callback func(width, height int))

	// SetCell sets a single cell at the given position.
	// Positions outside the terminal are silently ignored.
	SetCell(x, y int, cell core.Cell)

	// Fill fills a rectangular region with the given cell.
	Fill(rect geom.Rect, cell core.Cell)

	// Clear clears the entire screen with the default style.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// HideCursor hides the cursor.
	HideCursor()

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)

	// Beep produces an audible or visual bell.
	Beep()

	// EnableMouse enables mouse event reporting, including motion.
	EnableMouse()

	// DisableMouse disables mouse event reporting.
	DisableMouse()
}

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	width, height int
	cells         [][]core.Cell
	resizeHandler func(width, height int)
	events        chan Event
	beeps         int
	shows         int
	mouse         bool
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.allocate()
	return nil
}

func (b *NullBackend) allocate() {
	b.cells = make([][]core.Cell, b.height)
	for i := range b.cells {
		b.cells[i] = make([]core.Cell, b.width)
		for j := range b.cells[i] {
			b.cells[i][j] = core.EmptyCell()
		}
	}
}

func (b *NullBackend) Shutdown() {}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) OnResize(callback func(width, height int)) {
	b.resizeHandler = callback
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

// GetCell returns the cell at the given position, or an empty cell for
// positions outside the screen.
func (b *NullBackend) GetCell(x, y int) core.Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect geom.Rect, cell core.Cell) {
	for y := max(rect.Top, 0); y < rect.Bottom && y < b.height; y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < b.width; x++ {
			b.cells[y][x] = cell
		}
	}
}

func (b *NullBackend) Clear() {
	empty := core.EmptyCell()
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = empty
		}
	}
}

func (b *NullBackend) Show()       { b.shows++ }
func (b *NullBackend) HideCursor() {}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

func (b *NullBackend) Beep()         { b.beeps++ }
func (b *NullBackend) EnableMouse()  { b.mouse = true }
func (b *NullBackend) DisableMouse() { b.mouse = false }

// Row returns the runes of row y as a string.
func (b *NullBackend) Row(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	runes := make([]rune, b.width)
	for x, c := range b.cells[y] {
		runes[x] = c.Rune
	}
	return string(runes)
}

// Beeps returns how many times Beep was called.
func (b *NullBackend) Beeps() int { return b.beeps }

// Shows returns how many times Show was called.
func (b *NullBackend) Shows() int { return b.shows }

// MouseEnabled returns true if mouse reporting is enabled.
func (b *NullBackend) MouseEnabled() bool { return b.mouse }

// Resize simulates a terminal resize for testing.
func (b *NullBackend) Resize(width, height int) {
	b.width = width
	b.height = height
	b.allocate()
	if b.resizeHandler != nil {
		b.resizeHandler(width, height)
	}
}
