package hook

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/pointer"
)

// Hook function names.
const (
	FuncDragStart      = "on_drag_start"
	FuncPositionChange = "on_position_change"
	FuncDragEnd        = "on_drag_end"
)

// DefaultTimeout bounds a single load or hook call.
const DefaultTimeout = 100 * time.Millisecond

// Option configures a Script.
type Option func(*Script)

// WithLogger sets the logger used by draggable.log and for hook errors.
func WithLogger(l *logging.Logger) Option {
	return func(s *Script) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithElement sets the element id exposed as draggable.element.
func WithElement(id string) Option {
	return func(s *Script) {
		s.element = id
	}
}

// WithStatus sets the function behind draggable.status.
func WithStatus(fn func(string)) Option {
	return func(s *Script) {
		s.status = fn
	}
}

// WithTimeout bounds each load and hook call.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Script is a loaded Lua hook script.
//
// gopher-lua states are not goroutine-safe; the mutex serializes calls.
type Script struct {
	mu sync.Mutex
	L  *lua.LState

	path    string
	element string
	timeout time.Duration
	logger  *logging.Logger
	status  func(string)
	closed  bool
}

// Load reads and runs the script at path.
func Load(path string, opts ...Option) (*Script, error) {
	s := newScript(path, opts)
	if err := s.run(func() error { return s.L.DoFile(path) }); err != nil {
		s.L.Close()
		return nil, &ScriptError{Path: path, Err: err}
	}
	s.logger.Debug("loaded %s", path)
	return s, nil
}

// LoadString runs code as a script named name.
func LoadString(name, code string, opts ...Option) (*Script, error) {
	s := newScript(name, opts)
	if err := s.run(func() error { return s.L.DoString(code) }); err != nil {
		s.L.Close()
		return nil, &ScriptError{Path: name, Err: err}
	}
	return s, nil
}

func newScript(path string, opts []Option) *Script {
	s := &Script{
		path:    path,
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("hook").WithField("script", path)

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.installAPI()
	return s
}

// openSafeLibraries opens only the libraries a hook needs. io, os, debug
// and package are never opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// installAPI sets the draggable global.
func (s *Script) installAPI() {
	L := s.L
	mod := L.NewTable()
	L.SetField(mod, "element", lua.LString(s.element))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		s.logger.Info("%s", L.CheckString(1))
		return 0
	}))
	L.SetField(mod, "status", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		if s.status != nil {
			s.status(msg)
		}
		return 0
	}))
	L.SetGlobal("draggable", mod)
}

// run executes fn under the call timeout, turning panics into errors.
func (s *Script) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Path returns the script path.
func (s *Script) Path() string {
	return s.path
}

// Has returns true if the script defines the named hook function.
func (s *Script) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call runs the named hook with the callback arguments. A script that does
// not define the hook is not an error.
func (s *Script) Call(name string, delta drag.Delta, pos *geom.Point, ev pointer.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &ScriptError{Path: s.path, Func: name, Err: ErrScriptClosed}
	}

	fn := s.L.GetGlobal(name)
	switch fn.Type() {
	case lua.LTNil:
		return nil
	case lua.LTFunction:
	default:
		return &ScriptError{Path: s.path, Func: name, Err: fmt.Errorf("%w (got %s)", ErrNotFunction, fn.Type())}
	}

	args := []lua.LValue{s.deltaTable(delta), s.positionValue(pos), s.eventTable(ev)}
	err := s.run(func() error {
		return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
	if err != nil {
		return &ScriptError{Path: s.path, Func: name, Err: err}
	}
	return nil
}

func (s *Script) deltaTable(d drag.Delta) *lua.LTable {
	t := s.L.NewTable()
	s.L.SetField(t, "x", lua.LNumber(d.X))
	s.L.SetField(t, "y", lua.LNumber(d.Y))
	return t
}

func (s *Script) positionValue(p *geom.Point) lua.LValue {
	if p == nil {
		return lua.LNil
	}
	t := s.L.NewTable()
	s.L.SetField(t, "left", lua.LNumber(p.Left))
	s.L.SetField(t, "top", lua.LNumber(p.Top))
	return t
}

func (s *Script) eventTable(ev pointer.Event) *lua.LTable {
	x, y := ev.X, ev.Y
	if m, ok := pointer.Synthesize(ev); ok && ev.Kind.IsTouch() {
		x, y = m.X, m.Y
	}
	t := s.L.NewTable()
	s.L.SetField(t, "kind", lua.LString(ev.Kind.String()))
	s.L.SetField(t, "x", lua.LNumber(x))
	s.L.SetField(t, "y", lua.LNumber(y))
	s.L.SetField(t, "source", lua.LString(ev.Source.String()))
	s.L.SetField(t, "detail", lua.LNumber(ev.Detail))
	return t
}

// Callback returns a drag callback that runs the named hook and logs
// failures. It returns nil if the script does not define the hook.
func (s *Script) Callback(name string) drag.Callback {
	if !s.Has(name) {
		return nil
	}
	return func(delta drag.Delta, pos *geom.Point, ev pointer.Event) {
		if err := s.Call(name, delta, pos, ev); err != nil {
			s.logger.Warn("%v", err)
		}
	}
}

// Bind adds the script's hooks to opts, after any callbacks already set.
func (s *Script) Bind(opts *drag.Options) {
	opts.OnDragStart = Chain(opts.OnDragStart, s.Callback(FuncDragStart))
	opts.OnPositionChange = Chain(opts.OnPositionChange, s.Callback(FuncPositionChange))
	opts.OnDragEnd = Chain(opts.OnDragEnd, s.Callback(FuncDragEnd))
}

// Close releases the Lua state.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// Chain returns a callback that calls each non-nil callback in order. It
// returns nil when there is nothing to call.
func Chain(cbs ...drag.Callback) drag.Callback {
	var live []drag.Callback
	for _, cb := range cbs {
		if cb != nil {
			live = append(live, cb)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(delta drag.Delta, pos *geom.Point, ev pointer.Event) {
		for _, cb := range live {
			cb(delta, pos, ev)
		}
	}
}
