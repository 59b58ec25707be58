package config

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/draggable/internal/config/loader"
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/input/mouse"
	"github.com/dshills/draggable/internal/logging"
)

// Config is the complete draggable configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Mouse   MouseConfig   `toml:"mouse"`
	Metrics MetricsConfig `toml:"metrics"`
	Watch   WatchConfig   `toml:"watch"`
	Boxes   []BoxConfig   `toml:"box"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
	// File receives log output. Empty discards logs.
	File string `toml:"file"`
}

// MouseConfig configures pointer input.
type MouseConfig struct {
	// TouchButton is the button reported as a finger under touch emulation.
	TouchButton string `toml:"touch_button"`
	// EmulateTouch turns touch emulation on at startup.
	EmulateTouch bool `toml:"emulate_touch"`
	// DoubleClickMS is the double-click interval in milliseconds.
	DoubleClickMS int `toml:"double_click_ms"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics. Empty disables the endpoint.
	Addr string `toml:"addr"`
}

// WatchConfig configures live reload of the scene file.
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// defaults returns the built-in configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level": "info",
			"file":  "",
		},
		"mouse": map[string]any{
			"touch_button":    "middle",
			"emulate_touch":   false,
			"double_click_ms": 400,
		},
		"metrics": map[string]any{
			"addr": "",
		},
		"watch": map[string]any{
			"enabled":     true,
			"debounce_ms": 100,
		},
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Decode(defaults())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFS reads the scene file from fs instead of the OS file system.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnv overrides the environment loader. A nil loader disables the
// environment layer.
func WithEnv(l loader.Loader) Option {
	return func(o *options) {
		o.env = l
	}
}

// Load builds the configuration from the defaults, the scene file at path
// and the environment, then validates it. An empty path skips the file
// layer; a path that does not exist is an error.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := defaults()

	if path != "" {
		fl, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		merged = loader.DeepMerge(merged, data)
	}

	if o.env != nil {
		data, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg, err := Decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode converts a merged configuration map into a Config. Keys that
// Config does not know are rejected. The result is not validated.
func Decode(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Box returns the box with the given id.
func (c *Config) Box(id string) (BoxConfig, bool) {
	for _, b := range c.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return BoxConfig{}, false
}

// Bounds returns the configured rectangle a box is confined to: its
// bounding_rect, or else the configured rectangle of its bounding element.
// ok is false for unbounded boxes and for boxes bounded by the document,
// whose size is only known at runtime.
func (c *Config) Bounds(b BoxConfig) (rect geom.Rect, ok bool) {
	if r := b.BoundingRect; r != nil {
		return geom.NewRect(r.Top, r.Left, r.Bottom, r.Right), true
	}
	if b.BoundingElement == "" {
		return geom.Rect{}, false
	}
	el, found := c.Box(b.BoundingElement)
	if !found {
		return geom.Rect{}, false
	}
	return el.Rect(), true
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// MouseConfig returns the mouse translator configuration.
func (c *Config) MouseConfig() (mouse.Config, error) {
	mc := mouse.DefaultConfig()
	button, err := mouse.ParseButton(c.Mouse.TouchButton)
	if err != nil {
		return mc, err
	}
	mc.TouchButton = button
	mc.EmulateTouch = c.Mouse.EmulateTouch
	if c.Mouse.DoubleClickMS > 0 {
		mc.DoubleClickTime = time.Duration(c.Mouse.DoubleClickMS) * time.Millisecond
	}
	return mc, nil
}

// Debounce returns the watcher debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
