package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of the environment variables read by
// NewEnvLoader.
const DefaultEnvPrefix = "DRAGGABLE_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	mapping map[string]string // Env var -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader for the default variable mapping.
func NewEnvLoader() *EnvLoader {
	return NewEnvLoaderWithMapping(defaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		mapping: mapping,
		lookup:  os.LookupEnv,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping() map[string]string {
	p := DefaultEnvPrefix
	return map[string]string{
		p + "LOG_LEVEL":       "log.level",
		p + "LOG_FILE":        "log.file",
		p + "EMULATE_TOUCH":   "mouse.emulate_touch",
		p + "TOUCH_BUTTON":    "mouse.touch_button",
		p + "METRICS_ADDR":    "metrics.addr",
		p + "WATCH":           "watch.enabled",
		p + "WATCH_DEBOUNCE":  "watch.debounce_ms",
		p + "DOUBLE_CLICK_MS": "mouse.double_click_ms",
	}
}

// Load reads the mapped environment variables and returns a configuration
// map. Unset variables are skipped; empty values are kept.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// parseValue converts a string to a bool or integer when it looks like one.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
