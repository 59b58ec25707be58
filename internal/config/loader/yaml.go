package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct {
	fs   FileSystem
	path string
}

// NewYAMLLoader creates a new YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return NewYAMLLoaderWithFS(DefaultFS(), path)
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fs FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{
		fs:   fs,
		path: path,
	}
}

// Load reads configuration from the configured path.
func (l *YAMLLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path.
func (l *YAMLLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := readFile(l.fs, path)
	if err != nil || data == nil {
		return nil, err
	}
	return parseYAML(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *YAMLLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseYAML("<reader>", data)
}

func parseYAML(source string, data []byte) (map[string]any, error) {
	config := make(map[string]any)
	if err := yaml.Unmarshal(data, &config); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var terr *yaml.TypeError
		if !errors.As(err, &terr) {
			// Syntax errors read "yaml: line N: message".
			var line int
			if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
				perr.Line = line
				if i := strings.Index(perr.Message, ": "); i >= 0 {
					if j := strings.Index(perr.Message[i+2:], ": "); j >= 0 {
						perr.Message = perr.Message[i+2+j+2:]
					}
				}
			}
		}
		return nil, perr
	}
	return pruneNil(config), nil
}

// pruneNil removes keys whose value is null, so an explicit null behaves
// like an absent key.
func pruneNil(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			m[k] = pruneNil(val)
		case []any:
			for i, item := range val {
				if sub, ok := item.(map[string]any); ok {
					val[i] = pruneNil(sub)
				}
			}
		}
	}
	return m
}
