// Package app wires the scene, the drag controller, input translation,
// configuration reload, hooks and metrics into the draggable application
// and runs its event loop.
package app

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dshills/draggable/internal/config"
	"github.com/dshills/draggable/internal/config/watcher"
	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/hook"
	"github.com/dshills/draggable/internal/input/mouse"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/metrics"
	"github.com/dshills/draggable/internal/renderer/backend"
	"github.com/dshills/draggable/internal/scene"
)

// helpText is shown on the status line at startup.
const helpText = "drag a title bar | q quit  r reset  s stop  t touch  ^R reload"

// Options configures the application. Non-zero fields override the
// configuration file.
type Options struct {
	// ConfigPath is the scene file. Empty starts with no boxes.
	ConfigPath string

	// LogLevel overrides log.level.
	LogLevel string

	// LogFile overrides log.file.
	LogFile string

	// MetricsAddr overrides metrics.addr.
	MetricsAddr string

	// Touch turns touch emulation on regardless of the configuration.
	Touch bool

	// Logger replaces the logger built from the configuration.
	Logger *logging.Logger

	// Clock timestamps pointer events. Defaults to the real clock.
	Clock clockwork.Clock
}

// Application is the central coordinator for all draggable components.
type Application struct {
	mu sync.RWMutex

	opts    Options
	config  *config.Config
	logger  *logging.Logger
	logFile *os.File

	backend    backend.Backend
	scene      *scene.Scene
	drag       *drag.Controller
	translator *mouse.Translator
	feedback   *clampFeedback

	metrics       *metrics.Metrics
	metricsServer *metrics.Server
	watcher       *watcher.Watcher

	// Per-box state, keyed by box ID.
	boxConfigs map[string]config.BoxConfig
	scripts    map[string]*hook.Script
	stopped    map[string]bool

	running      atomic.Bool
	done         chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:       opts,
		done:       make(chan struct{}),
		boxConfigs: make(map[string]config.BoxConfig),
		scripts:    make(map[string]*hook.Script),
		stopped:    make(map[string]bool),
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run initializes the backend and runs the event loop until the user quits
// or Shutdown is called. Quitting returns ErrQuit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.backend == nil {
		return &InitError{Component: "backend", Err: ErrNoBackend}
	}
	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()
	app.backend.EnableMouse()

	app.scene.Resize(app.backend.Size())
	// Button and click state from an earlier terminal does not carry over.
	app.translator.Reset()
	app.startMetricsServer()

	app.logger.Info("running with %d boxes", len(app.scene.Boxes()))
	return app.eventLoop()
}

// startMetricsServer serves metrics in the background when configured.
func (app *Application) startMetricsServer() {
	if app.metricsServer == nil {
		return
	}
	srv := app.metricsServer
	addr := app.config.Metrics.Addr
	go func() {
		if err := srv.Start(addr); err != nil {
			app.logger.Error("metrics server: %v", err)
		}
	}()
}

// Stop asks a running event loop to return. It only signals and is safe to
// call from any goroutine, such as a signal handler.
func (app *Application) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// Shutdown stops the event loop and releases every resource. It is safe
// to call more than once, but must not run concurrently with Run: other
// goroutines call Stop and let Run return first.
func (app *Application) Shutdown() {
	app.Stop()
	app.shutdownOnce.Do(app.shutdown)
}

// shutdown performs cleanup in reverse initialization order.
func (app *Application) shutdown() {
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.logger.Warn("closing watcher: %v", err)
		}
	}

	for id, s := range app.scripts {
		s.Close()
		delete(app.scripts, id)
	}

	if app.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			app.logger.Warn("stopping metrics server: %v", err)
		}
		cancel()
	}

	app.logger.Info("shutdown complete")
	if app.logFile != nil {
		app.logFile.Close()
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Scene returns the scene.
func (app *Application) Scene() *scene.Scene {
	return app.scene
}

// Drag returns the drag controller.
func (app *Application) Drag() *drag.Controller {
	return app.drag
}

// Metrics returns the metrics collectors.
func (app *Application) Metrics() *metrics.Metrics {
	return app.metrics
}

// Translator returns the mouse translator.
func (app *Application) Translator() *mouse.Translator {
	return app.translator
}
