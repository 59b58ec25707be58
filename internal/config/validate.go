package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/draggable/internal/input/mouse"
	"github.com/dshills/draggable/internal/pointer"
	"github.com/dshills/draggable/internal/renderer/backend"
	"github.com/dshills/draggable/internal/renderer/core"
)

var logLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the whole configuration and returns every problem
// found, joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if !logLevels[strings.ToLower(c.Log.Level)] {
		fail("log.level", "must be debug, info, warn or error", c.Log.Level)
	}

	if b, err := mouse.ParseButton(c.Mouse.TouchButton); err != nil {
		fail("mouse.touch_button", err.Error(), c.Mouse.TouchButton)
	} else if b == backend.ButtonPrimary {
		fail("mouse.touch_button", "the primary button cannot emulate touch", c.Mouse.TouchButton)
	}
	if c.Mouse.DoubleClickMS < 0 {
		fail("mouse.double_click_ms", "must not be negative", c.Mouse.DoubleClickMS)
	}
	if c.Watch.DebounceMS < 0 {
		fail("watch.debounce_ms", "must not be negative", c.Watch.DebounceMS)
	}

	ids := make(map[string]bool, len(c.Boxes))
	for _, b := range c.Boxes {
		if b.ID != "" {
			ids[b.ID] = true
		}
	}

	seen := make(map[string]bool, len(c.Boxes))
	for i, b := range c.Boxes {
		path := fmt.Sprintf("box[%d]", i)
		if b.ID != "" {
			if b.ID == string(pointer.Document) || strings.HasSuffix(b.ID, "/title") {
				fail(path+".id", "reserved id", b.ID)
			}
			if seen[b.ID] {
				fail(path+".id", "duplicate id", b.ID)
			}
			seen[b.ID] = true
		}

		if b.Width < 2 {
			fail(path+".width", "must be at least 2", b.Width)
		}
		if b.Height < 2 {
			fail(path+".height", "must be at least 2", b.Height)
		}
		if b.Handle != "" && b.Handle != HandleTitle {
			fail(path+".handle", `must be "title" or empty`, b.Handle)
		}
		if _, err := core.ParseColor(b.Color); err != nil {
			fail(path+".color", err.Error(), b.Color)
		}

		if e := b.BoundingElement; e != "" {
			switch {
			case e == b.ID:
				fail(path+".bounding_element", "box cannot be bounded by itself", e)
			case !ids[e] && e != string(pointer.Document):
				fail(path+".bounding_element", "no box with this id", e)
			}
		}
		if r := b.BoundingRect; r != nil && (r.Bottom <= r.Top || r.Right <= r.Left) {
			fail(path+".bounding_rect", "must have positive width and height", *r)
		}
		if m := b.BoundingMargin; m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
			fail(path+".bounding_margin", "must not be negative", m)
		}
	}

	return errors.Join(errs...)
}
