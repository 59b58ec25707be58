package hook

import (
	"errors"
	"fmt"
)

// Errors returned by script operations.
var (
	// ErrScriptClosed is returned when calling into a closed script.
	ErrScriptClosed = errors.New("script is closed")

	// ErrNotFunction is returned when a hook name is bound to a non-function.
	ErrNotFunction = errors.New("not a function")
)

// ScriptError reports a failure loading or running a script.
type ScriptError struct {
	// Path is the script file, or the chunk name for inline scripts.
	Path string
	// Func is the hook that failed. Empty for load errors.
	Func string
	// Err is the underlying error.
	Err error
}

func (e *ScriptError) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("script %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("script %s: %s: %v", e.Path, e.Func, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
