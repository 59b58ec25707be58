package app

import (
	"github.com/dshills/draggable/internal/config"
	"github.com/dshills/draggable/internal/config/watcher"
	"github.com/dshills/draggable/internal/renderer/backend"
)

// handleKeyEvent processes keyboard input events.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyCtrlL:
		// The loop redraws after every event.
		return nil
	case backend.KeyCtrlR:
		app.reloadNow()
		return nil
	case backend.KeyEscape:
		app.scene.SetStatus(helpText)
		return nil
	case backend.KeyRune:
		return app.handleRune(ev.Rune)
	default:
		return nil
	}
}

func (app *Application) handleRune(r rune) error {
	switch r {
	case 'q':
		return ErrQuit

	case 'r':
		box, err := app.boxUnderPointer()
		if err != nil {
			app.scene.SetStatus(err.Error())
			return nil
		}
		if err := app.resetBox(box.ID); err != nil {
			app.scene.SetStatus(err.Error())
			return nil
		}
		app.scene.SetStatus("reset " + box.ID)

	case 's':
		box, err := app.boxUnderPointer()
		if err != nil {
			app.scene.SetStatus(err.Error())
			return nil
		}
		stopped, err := app.toggleStop(box.ID)
		if err != nil {
			app.scene.SetStatus(err.Error())
			return nil
		}
		if stopped {
			app.scene.SetStatus("stopped " + box.ID)
		} else {
			app.scene.SetStatus("dragging " + box.ID)
		}

	case 't':
		on := !app.translator.EmulateTouch()
		app.translator.SetEmulateTouch(on)
		if on {
			app.scene.SetStatus("touch emulation on")
		} else {
			app.scene.SetStatus("touch emulation off")
		}
	}
	return nil
}

// reload handles a change of the scene file.
func (app *Application) reload(ev watcher.Event) {
	app.logger.Debug("config %s: %s", ev.Op, ev.Path)
	if ev.Gone() {
		app.logger.Warn("config file %s is gone, keeping the current scene", ev.Path)
		app.scene.SetStatus("config removed")
		return
	}
	app.reloadNow()
}

// reloadNow reads the scene file again and applies it. A file that fails
// to load or validate leaves the scene untouched.
func (app *Application) reloadNow() {
	if app.opts.ConfigPath == "" {
		app.scene.SetStatus("no config file")
		return
	}

	cfg, err := config.Load(app.opts.ConfigPath)
	app.metrics.ConfigReloaded(err)
	if err != nil {
		app.logger.Error("reload: %v", err)
		app.scene.SetStatus("reload failed: " + err.Error())
		return
	}

	app.applyOverrides(cfg)
	app.logger.SetLevel(cfg.LogLevel())
	app.translator.SetEmulateTouch(cfg.Mouse.EmulateTouch)

	if err := app.applyConfig(cfg); err != nil {
		app.logger.Warn("reload: %v", err)
		app.scene.SetStatus("reloaded with errors: " + err.Error())
		return
	}
	app.logger.Info("reloaded %s (%d boxes)", app.opts.ConfigPath, len(cfg.Boxes))
	app.scene.SetStatus("reloaded")
}
