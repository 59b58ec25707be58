package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dshills/draggable/internal/config"
	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/hook"
	"github.com/dshills/draggable/internal/pointer"
	"github.com/dshills/draggable/internal/renderer/core"
	"github.com/dshills/draggable/internal/scene"
)

// applyConfig brings the scene in line with cfg. Boxes are matched by ID:
// existing boxes keep their position and take the new size, label, color
// and drag options; new boxes are added; boxes no longer listed are
// detached and removed. Boxes without an ID never match and are replaced.
func (app *Application) applyConfig(cfg *config.Config) error {
	var errs []error
	keep := make(map[string]bool, len(cfg.Boxes))

	for _, bc := range cfg.Boxes {
		box, err := app.upsertBox(bc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bc.ID = box.ID
		keep[box.ID] = true
		app.boxConfigs[box.ID] = bc
		app.stopped[box.ID] = bc.StopDragging

		if err := app.loadScript(box.ID, bc.Script); err != nil {
			errs = append(errs, err)
		}
		app.checkBounds(cfg, bc)
		app.drag.Update(box, app.optionsFor(box.ID))
	}

	for _, box := range app.scene.Boxes() {
		if !keep[box.ID] {
			app.removeBox(box)
		}
	}

	app.config = cfg
	app.logger.Debug("scene has %d boxes, %d listeners", len(app.scene.Boxes()), app.scene.Listeners())
	return errors.Join(errs...)
}

// checkBounds reports boxes whose configured bounds cannot hold them or
// that start outside them. Neither is an error: the first move clamps.
func (app *Application) checkBounds(cfg *config.Config, bc config.BoxConfig) {
	bounds, ok := cfg.Bounds(bc)
	if !ok {
		return
	}
	rect := bc.Rect()
	margin := bc.DragOptions().BoundingRectMargin
	switch {
	case !geom.Fits(rect.Size(), bounds, margin):
		app.logger.Warn("box %s (%dx%d) does not fit its bounds %s; it will be pinned to their top-left",
			bc.ID, rect.Width(), rect.Height(), bounds.Inset(margin))
	case !bounds.Inset(margin).ContainsRect(rect):
		app.logger.Debug("box %s at %s starts outside its bounds %s", bc.ID, rect, bounds.Inset(margin))
	}
}

// upsertBox updates the box with bc's ID or adds a new one.
func (app *Application) upsertBox(bc config.BoxConfig) (*scene.Box, error) {
	if bc.ID != "" {
		if box, ok := app.scene.Box(bc.ID); ok {
			color, err := core.ParseColor(bc.Color)
			if err != nil {
				return nil, fmt.Errorf("box %q: %w", bc.ID, err)
			}
			box.Label = bc.Label
			if box.Label == "" {
				box.Label = bc.ID
			}
			box.Color = color
			box.Hidden = bc.Hidden
			box.Rect = geom.RectAt(box.Rect.Position(), geom.Size{Width: bc.Width, Height: bc.Height})
			return box, nil
		}
	}

	sb, err := bc.SceneBox()
	if err != nil {
		return nil, err
	}
	box, err := app.scene.Add(sb)
	if err != nil {
		return nil, err
	}
	if sb.ID == "" {
		box.Label = box.ID[:8]
	}
	return box, nil
}

// removeBox detaches and removes a box.
func (app *Application) removeBox(box *scene.Box) {
	app.drag.Detach(box)
	app.scene.Remove(box.ID)
	if s, ok := app.scripts[box.ID]; ok {
		s.Close()
		delete(app.scripts, box.ID)
	}
	delete(app.boxConfigs, box.ID)
	delete(app.stopped, box.ID)
	app.logger.Debug("removed box %s", box.ID)
}

// loadScript replaces the hook script of a box. Relative paths are
// resolved against the directory of the scene file.
func (app *Application) loadScript(id, path string) error {
	if old, ok := app.scripts[id]; ok {
		old.Close()
		delete(app.scripts, id)
	}
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) && app.opts.ConfigPath != "" {
		path = filepath.Join(filepath.Dir(app.opts.ConfigPath), path)
	}

	s, err := hook.Load(path,
		hook.WithElement(id),
		hook.WithLogger(app.logger),
		hook.WithStatus(app.scene.SetStatus),
	)
	if err != nil {
		return err
	}
	app.scripts[id] = s
	app.logger.Debug("loaded script %s for %s", s.Path(), id)
	return nil
}

// optionsFor builds the drag options of a box from its configuration and
// runtime state.
func (app *Application) optionsFor(id string) drag.Options {
	opts := app.boxConfigs[id].DragOptions()
	opts.StopDragging = app.stopped[id]
	opts.OnDragStart = app.statusCallback(id, "start")
	opts.OnPositionChange = app.statusCallback(id, "move")
	opts.OnDragEnd = app.statusCallback(id, "end")
	if s, ok := app.scripts[id]; ok {
		s.Bind(&opts)
	}
	return opts
}

// statusCallback reports callback activity on the status line.
func (app *Application) statusCallback(id, phase string) drag.Callback {
	return func(delta drag.Delta, pos *geom.Point, _ pointer.Event) {
		app.scene.SetStatus(formatStatus(phase, id, delta, pos))
	}
}

func formatStatus(phase, id string, delta drag.Delta, pos *geom.Point) string {
	at := "-"
	if pos != nil {
		at = pos.String()
	}
	return fmt.Sprintf("%s %s %+d,%+d %s", phase, id, delta.X, delta.Y, at)
}

// resetBox moves a box back to its initial position.
func (app *Application) resetBox(id string) error {
	box, ok := app.scene.Box(id)
	if !ok {
		return fmt.Errorf("%w: %q", scene.ErrBoxNotFound, id)
	}
	opts := app.optionsFor(id)
	opts.ResetInitialPos = true
	app.drag.Update(box, opts)
	app.drag.Update(box, app.optionsFor(id))
	return nil
}

// toggleStop turns dragging of a box off or back on.
func (app *Application) toggleStop(id string) (stopped bool, err error) {
	box, ok := app.scene.Box(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", scene.ErrBoxNotFound, id)
	}
	app.stopped[id] = !app.stopped[id]
	app.drag.Update(box, app.optionsFor(id))
	return app.stopped[id], nil
}

// boxUnderPointer returns the topmost box at the last pointer position.
func (app *Application) boxUnderPointer() (*scene.Box, error) {
	p, ok := app.translator.Position()
	if !ok {
		return nil, ErrNoBoxUnderPointer
	}
	box, ok := app.scene.HitTest(p.Left, p.Top)
	if !ok {
		return nil, ErrNoBoxUnderPointer
	}
	return box, nil
}

// onDocumentDown resets a box when its title bar is double-clicked.
func (app *Application) onDocumentDown(ev pointer.Event) {
	if ev.Detail != 2 {
		return
	}
	path := app.scene.Path(ev.X, ev.Y)
	if len(path) < 3 {
		return
	}
	box, ok := path[1].(*scene.Box)
	if !ok || path[0].TargetID() != box.Title().TargetID() {
		return
	}
	if err := app.resetBox(box.ID); err == nil {
		app.scene.SetStatus("reset " + box.ID)
	}
}
