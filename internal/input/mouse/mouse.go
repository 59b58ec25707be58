package mouse

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/pointer"
	"github.com/dshills/draggable/internal/renderer/backend"
)

// ParseButton converts a button name to a button mask.
func ParseButton(name string) (backend.ButtonMask, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "primary":
		return backend.ButtonPrimary, nil
	case "right", "secondary":
		return backend.ButtonSecondary, nil
	case "middle":
		return backend.ButtonMiddle, nil
	default:
		return backend.ButtonNone, fmt.Errorf("unknown mouse button %q", name)
	}
}

// Config configures the translator.
type Config struct {
	// EmulateTouch reports TouchButton as a touch contact.
	EmulateTouch bool

	// TouchButton is the button that acts as a finger when EmulateTouch
	// is set. It must not be the primary button.
	TouchButton backend.ButtonMask

	// DoubleClickTime is the maximum time between clicks for a double-click.
	DoubleClickTime time.Duration

	// DoubleClickDistance is the maximum distance between clicks for a double-click.
	DoubleClickDistance int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		TouchButton:         backend.ButtonMiddle,
		DoubleClickTime:     400 * time.Millisecond,
		DoubleClickDistance: 2,
	}
}

// Option configures a Translator.
type Option func(*Translator)

// WithClock sets the clock used to timestamp events.
func WithClock(c clockwork.Clock) Option {
	return func(t *Translator) {
		if c != nil {
			t.clock = c
		}
	}
}

// Translator turns backend mouse snapshots into pointer events.
type Translator struct {
	mu     sync.Mutex
	config Config
	clock  clockwork.Clock
	click  *clickTracker

	held backend.ButtonMask
	pos  geom.Point
	seen bool

	// touching is true while an emulated finger is down.
	touching bool
	touchID  int
}

// NewTranslator creates a translator with the given configuration.
func NewTranslator(config Config, opts ...Option) *Translator {
	if config.TouchButton == backend.ButtonNone || config.TouchButton == backend.ButtonPrimary {
		config.TouchButton = backend.ButtonMiddle
	}
	t := &Translator{
		config: config,
		clock:  clockwork.NewRealClock(),
		click:  newClickTracker(config.DoubleClickTime, config.DoubleClickDistance),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetEmulateTouch turns touch emulation on or off. A finger that is down
// stays down until its button is released.
func (t *Translator) SetEmulateTouch(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.config.EmulateTouch = on
}

// EmulateTouch returns true if touch emulation is on.
func (t *Translator) EmulateTouch() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config.EmulateTouch
}

// Position returns the last reported pointer position.
func (t *Translator) Position() (geom.Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos, t.seen
}

// Translate converts one backend event into zero or more pointer events.
// Non-mouse events produce nothing.
func (t *Translator) Translate(ev backend.Event) []pointer.Event {
	if ev.Type != backend.EventMouse {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	at := geom.Pt(ev.MouseX, ev.MouseY)
	moved := !t.seen || at != t.pos
	t.pos, t.seen = at, true

	// Wheel "buttons" are momentary and never held.
	buttons := ev.Buttons &^ (backend.WheelUp | backend.WheelDown)
	pressed := buttons &^ t.held
	released := t.held &^ buttons
	t.held = buttons

	var out []pointer.Event

	if moved {
		if t.touching {
			out = append(out, t.touchEvent(pointer.KindTouchMove, at, now))
		} else {
			out = append(out, pointer.Event{
				Kind: pointer.KindMove, X: at.Left, Y: at.Top,
				Source: pointer.SourceMouse, Time: now,
			})
		}
	}

	if released.Has(backend.ButtonPrimary) {
		out = append(out, pointer.Event{
			Kind: pointer.KindUp, X: at.Left, Y: at.Top,
			Source: pointer.SourceMouse, Time: now,
		})
	}
	if pressed.Has(backend.ButtonPrimary) {
		out = append(out, pointer.Event{
			Kind: pointer.KindDown, X: at.Left, Y: at.Top,
			Detail: t.click.recordClick(at, now),
			Source: pointer.SourceMouse, Time: now,
		})
	}

	touch := t.config.TouchButton
	switch {
	case t.touching && released.Has(touch):
		out = append(out, t.touchEvent(pointer.KindTouchEnd, at, now))
		t.touching = false
	case !t.touching && t.config.EmulateTouch && pressed.Has(touch):
		t.touchID++
		t.touching = true
		out = append(out, t.touchEvent(pointer.KindTouchStart, at, now))
	}

	return out
}

func (t *Translator) touchEvent(kind pointer.Kind, at geom.Point, now time.Time) pointer.Event {
	contact := []pointer.Touch{{ID: t.touchID, X: at.Left, Y: at.Top}}
	ev := pointer.Event{
		Kind:           kind,
		ChangedTouches: contact,
		Source:         pointer.SourceTouch,
		Time:           now,
	}
	if kind != pointer.KindTouchEnd {
		ev.Touches = contact
	}
	return ev
}

// Reset clears button, touch and click tracking.
func (t *Translator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.held = backend.ButtonNone
	t.touching = false
	t.seen = false
	t.click.reset()
}
