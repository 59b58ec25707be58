package scene

import (
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/renderer/backend"
	"github.com/dshills/draggable/internal/renderer/core"
)

const (
	cornerTL   = '┌'
	cornerTR   = '┐'
	cornerBL   = '└'
	cornerBR   = '┘'
	horizontal = '─'
	vertical   = '│'
)

// Render draws every visible box from bottom to top, then the status line
// on the last screen row, and flushes the backend.
func (s *Scene) Render(b backend.Backend) {
	b.Clear()

	for _, box := range s.boxes {
		if !box.Hidden {
			drawBox(b, box, s.Draggable(box.ID))
		}
	}

	if s.height > 0 {
		row := s.height - 1
		style := core.DefaultStyle().Reverse()
		b.Fill(geom.NewRect(row, 0, row+1, s.width), core.NewStyledCell(' ', style))
		drawText(b, 0, row, s.width, s.status, style)
	}

	b.Show()
}

// drawBox draws a box. The title of a box that cannot be dragged is dim.
func drawBox(b backend.Backend, box *Box, draggable bool) {
	r := box.Rect
	border := core.DefaultStyle().WithForeground(box.Color)
	title := border.Reverse().Bold()
	if !draggable {
		title = border.Reverse().Dim()
	}

	b.Fill(r.Inset(geom.Margin{Top: 1, Bottom: 1, Left: 1, Right: 1}), core.EmptyCell())

	// Title bar.
	b.Fill(box.titleRect(), core.NewStyledCell(' ', title))
	drawText(b, r.Left+1, r.Top, r.Width()-2, box.Label, title)

	bottom := r.Bottom - 1
	right := r.Right - 1
	for x := r.Left + 1; x < right; x++ {
		b.SetCell(x, bottom, core.NewStyledCell(horizontal, border))
	}
	for y := r.Top + 1; y < bottom; y++ {
		b.SetCell(r.Left, y, core.NewStyledCell(vertical, border))
		b.SetCell(right, y, core.NewStyledCell(vertical, border))
	}
	b.SetCell(r.Left, bottom, core.NewStyledCell(cornerBL, border))
	b.SetCell(right, bottom, core.NewStyledCell(cornerBR, border))
	b.SetCell(r.Left, r.Top, core.NewStyledCell(cornerTL, title))
	b.SetCell(right, r.Top, core.NewStyledCell(cornerTR, title))
}

// drawText writes text starting at (x, y), truncated to width cells.
func drawText(b backend.Backend, x, y, width int, text string, style core.Style) {
	if width <= 0 {
		return
	}
	i := 0
	for _, r := range text {
		if i >= width {
			return
		}
		b.SetCell(x+i, y, core.NewStyledCell(r, style))
		i++
	}
}
