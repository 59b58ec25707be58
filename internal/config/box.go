package config

import (
	"fmt"

	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/pointer"
	"github.com/dshills/draggable/internal/renderer/core"
	"github.com/dshills/draggable/internal/scene"
)

// HandleTitle makes the title bar the drag handle.
const HandleTitle = "title"

// BoxConfig describes one box and how it drags.
type BoxConfig struct {
	ID     string `toml:"id"`
	Label  string `toml:"label"`
	Color  string `toml:"color"`
	Left   int    `toml:"left"`
	Top    int    `toml:"top"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Hidden bool   `toml:"hidden"`

	// Handle is "title" or empty for the whole box.
	Handle          string       `toml:"handle"`
	AllowTouch      bool         `toml:"allow_touch"`
	ResetInitialPos bool         `toml:"reset_initial_pos"`
	InitialPosition *PointConfig `toml:"initial_position"`
	BoundingRect    *RectConfig  `toml:"bounding_rect"`
	BoundingElement string       `toml:"bounding_element"`
	BoundingMargin  MarginConfig `toml:"bounding_margin"`
	StopDragging    bool         `toml:"stop_dragging"`

	// Script is a Lua file defining drag hooks for this box.
	Script string `toml:"script"`
}

// PointConfig is a position in cells.
type PointConfig struct {
	Left int `toml:"left"`
	Top  int `toml:"top"`
}

// RectConfig is a rectangle given by its edges; bottom and right are
// exclusive.
type RectConfig struct {
	Top    int `toml:"top"`
	Left   int `toml:"left"`
	Bottom int `toml:"bottom"`
	Right  int `toml:"right"`
}

// MarginConfig is a per-side inset.
type MarginConfig struct {
	Top    int `toml:"top"`
	Bottom int `toml:"bottom"`
	Left   int `toml:"left"`
	Right  int `toml:"right"`
}

// Rect returns the box rectangle.
func (b BoxConfig) Rect() geom.Rect {
	return geom.RectAt(geom.Pt(b.Left, b.Top), geom.Size{Width: b.Width, Height: b.Height})
}

// SceneBox returns the scene box to draw.
func (b BoxConfig) SceneBox() (scene.Box, error) {
	color, err := core.ParseColor(b.Color)
	if err != nil {
		return scene.Box{}, fmt.Errorf("box %q: %w", b.ID, err)
	}
	label := b.Label
	if label == "" {
		label = b.ID
	}
	return scene.Box{
		ID:     b.ID,
		Label:  label,
		Rect:   b.Rect(),
		Color:  color,
		Hidden: b.Hidden,
	}, nil
}

// DragOptions returns the drag options for the box. Callbacks are left
// for the caller to set.
func (b BoxConfig) DragOptions() drag.Options {
	opts := drag.Options{
		AllowTouch:      b.AllowTouch,
		ResetInitialPos: b.ResetInitialPos,
		BoundingRectMargin: geom.Margin{
			Top:    b.BoundingMargin.Top,
			Bottom: b.BoundingMargin.Bottom,
			Left:   b.BoundingMargin.Left,
			Right:  b.BoundingMargin.Right,
		},
		StopDragging: b.StopDragging,
	}
	if b.Handle == HandleTitle {
		opts.Handle = scene.TitleTarget(b.ID)
	}
	if p := b.InitialPosition; p != nil {
		opts.InitialPosition = geom.Pt(p.Left, p.Top).Ptr()
	}
	if r := b.BoundingRect; r != nil {
		rect := geom.NewRect(r.Top, r.Left, r.Bottom, r.Right)
		opts.BoundingRect = &rect
	}
	if b.BoundingElement != "" {
		opts.BoundingElement = pointer.TargetID(b.BoundingElement)
	}
	return opts
}
