package app

import (
	"github.com/dshills/draggable/internal/config"
	"github.com/dshills/draggable/internal/config/watcher"
	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/input/mouse"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/metrics"
	"github.com/dshills/draggable/internal/pointer"
	"github.com/dshills/draggable/internal/scene"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"metrics", b.initMetrics},
		{"scene", b.initScene},
		{"input", b.initInput},
		{"watcher", b.initWatcher},
	}

	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}

	// Box problems (a bad script, say) leave the rest of the scene usable.
	if err := b.app.applyConfig(b.app.config); err != nil {
		b.app.logger.Warn("scene: %v", err)
	}
	b.app.scene.SetStatus(helpText)
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.app.opts.ConfigPath)
	if err != nil {
		return err
	}
	b.app.applyOverrides(cfg)
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	app := b.app
	if app.opts.Logger != nil {
		app.logger = app.opts.Logger
		return nil
	}
	if app.config.Log.File == "" {
		app.logger = logging.Discard()
		return nil
	}

	f, err := logging.OpenFile(app.config.Log.File)
	if err != nil {
		return err
	}
	app.logFile = f
	app.logger = logging.New(logging.Config{
		Level:  app.config.LogLevel(),
		Output: f,
		Prefix: "draggable",
	})
	return nil
}

func (b *bootstrapper) initMetrics() error {
	app := b.app
	app.metrics = metrics.New()
	if app.config.Metrics.Addr != "" {
		app.metricsServer = metrics.NewServer(app.metrics, app.logger)
	}
	return nil
}

func (b *bootstrapper) initScene() error {
	app := b.app
	app.scene = scene.New(0, 0, scene.WithLogger(app.logger))
	app.feedback = newClampFeedback(app)
	app.drag = drag.NewController(app.scene,
		drag.WithLogger(app.logger),
		drag.WithObserver(app.metrics),
		drag.WithObserver(app.feedback),
	)
	app.scene.Listen(pointer.Document, pointer.KindDown, app.onDocumentDown)
	return nil
}

func (b *bootstrapper) initInput() error {
	app := b.app
	mc, err := app.config.MouseConfig()
	if err != nil {
		return err
	}

	var opts []mouse.Option
	if app.opts.Clock != nil {
		opts = append(opts, mouse.WithClock(app.opts.Clock))
	}
	app.translator = mouse.NewTranslator(mc, opts...)
	return nil
}

func (b *bootstrapper) initWatcher() error {
	app := b.app
	if app.opts.ConfigPath == "" || !app.config.Watch.Enabled {
		return nil
	}

	w, err := watcher.New(app.opts.ConfigPath,
		watcher.WithDebounce(app.config.Debounce()),
		watcher.WithLogger(app.logger),
	)
	if err != nil {
		return err
	}
	app.watcher = w
	return nil
}

// cleanup releases components in reverse initialization order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "watcher":
			if b.app.watcher != nil {
				b.app.watcher.Close()
			}
		case "logger":
			if b.app.logFile != nil {
				b.app.logFile.Close()
			}
		}
	}
}

// applyOverrides applies command-line options to cfg.
func (app *Application) applyOverrides(cfg *config.Config) {
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		cfg.Log.File = app.opts.LogFile
	}
	if app.opts.MetricsAddr != "" {
		cfg.Metrics.Addr = app.opts.MetricsAddr
	}
	if app.opts.Touch {
		cfg.Mouse.EmulateTouch = true
	}
}
