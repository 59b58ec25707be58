package app

import (
	"github.com/dshills/draggable/internal/config/watcher"
	"github.com/dshills/draggable/internal/renderer/backend"
)

// eventLoop is the main application loop. Every input event and config
// change is handled on this goroutine, so the scene and the drag
// controller are never touched concurrently.
func (app *Application) eventLoop() error {
	events := app.startInputPolling()

	var changes <-chan watcher.Event
	var watchErrs <-chan error
	if app.watcher != nil {
		changes = app.watcher.Events()
		watchErrs = app.watcher.Errors()
	}

	app.render()

	for {
		select {
		case <-app.done:
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.handleBackendEvent(ev); err != nil {
				return err
			}

		case ev, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			app.reload(ev)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			app.logger.Warn("watcher: %v", err)
		}

		app.render()
	}
}

// render draws the scene on the backend.
func (app *Application) render() {
	app.scene.Render(app.backend)
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.scene.Resize(ev.Width, ev.Height)
		return nil
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		app.handleMouseEvent(ev)
		return nil
	default:
		return nil
	}
}

// handleMouseEvent translates a mouse report into pointer events and
// dispatches them to the scene.
func (app *Application) handleMouseEvent(ev backend.Event) {
	for _, pev := range app.translator.Translate(ev) {
		app.scene.Dispatch(pev)
	}
}

// startInputPolling starts a goroutine that polls for input events.
// Returns a channel that receives events.
func (app *Application) startInputPolling() <-chan backend.Event {
	events := make(chan backend.Event, 100)
	b := app.backend

	go func() {
		defer close(events)

		for app.running.Load() {
			// PollEvent is blocking. backend.Shutdown() in Run unblocks it
			// on a real terminal.
			ev := b.PollEvent()
			if !app.running.Load() {
				return
			}

			// Mouse reports are diffed against the previous one, so a
			// dropped release would leave a gesture running. Wait for
			// room instead.
			select {
			case events <- ev:
			case <-app.done:
				return
			}
		}
	}()

	return events
}
