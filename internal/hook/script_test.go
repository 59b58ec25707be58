package hook

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/pointer"
)

const recorder = `
calls = {}

function on_drag_start(delta, position, event)
  table.insert(calls, "start " .. delta.x .. "," .. delta.y .. " " .. event.kind)
end

function on_position_change(delta, position, event)
  if position == nil then
    table.insert(calls, "move nil")
  else
    table.insert(calls, "move " .. delta.x .. "," .. delta.y .. " at " .. position.left .. "," .. position.top)
  end
  draggable.status(draggable.element .. " " .. position.left .. "," .. position.top)
end
`

func calls(t *testing.T, s *Script) []string {
	t.Helper()
	tbl, ok := s.L.GetGlobal("calls").(*lua.LTable)
	if !ok {
		t.Fatal("calls is not a table")
	}
	var out []string
	for i := 1; i <= tbl.Len(); i++ {
		out = append(out, tbl.RawGetInt(i).String())
	}
	return out
}

func TestLoadStringAndCall(t *testing.T) {
	var status string
	s, err := LoadString("notes.lua", recorder,
		WithElement("notes"),
		WithStatus(func(msg string) { status = msg }),
	)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer s.Close()

	if !s.Has(FuncDragStart) || !s.Has(FuncPositionChange) {
		t.Error("Has() = false for defined hooks")
	}
	if s.Has(FuncDragEnd) {
		t.Error("Has(on_drag_end) = true for an undefined hook")
	}

	ev := pointer.Event{Kind: pointer.KindDown, X: 3, Y: 4}
	if err := s.Call(FuncDragStart, drag.Delta{}, geom.Pt(1, 1).Ptr(), ev); err != nil {
		t.Fatalf("Call(start) error = %v", err)
	}
	if err := s.Call(FuncPositionChange, drag.Delta{X: 2, Y: -1}, geom.Pt(3, 0).Ptr(), pointer.Event{}); err != nil {
		t.Fatalf("Call(move) error = %v", err)
	}
	if err := s.Call(FuncDragEnd, drag.Delta{}, nil, pointer.Event{}); err != nil {
		t.Errorf("Call(undefined) error = %v, want nil", err)
	}

	got := calls(t, s)
	want := []string{"start 0,0 down", "move 2,-1 at 3,0"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if status != "notes 3,0" {
		t.Errorf("status = %q, want %q", status, "notes 3,0")
	}
}

func TestCallRuntimeError(t *testing.T) {
	s, err := LoadString("bad.lua", `function on_drag_end() error("boom") end`)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.Call(FuncDragEnd, drag.Delta{}, nil, pointer.Event{})
	var serr *ScriptError
	if !errors.As(err, &serr) {
		t.Fatalf("Call() error = %v, want ScriptError", err)
	}
	if serr.Func != FuncDragEnd || !strings.Contains(serr.Error(), "boom") {
		t.Errorf("error = %v", serr)
	}
}

func TestCallNotFunction(t *testing.T) {
	s, err := LoadString("bad.lua", `on_drag_start = 5`)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.Call(FuncDragStart, drag.Delta{}, nil, pointer.Event{})
	if !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call() error = %v, want ErrNotFunction", err)
	}
	if s.Callback(FuncDragStart) != nil {
		t.Error("Callback() for a non-function is not nil")
	}
}

func TestCallTimeout(t *testing.T) {
	s, err := LoadString("loop.lua", `function on_drag_start() while true do end end`,
		WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	done := make(chan error, 1)
	go func() { done <- s.Call(FuncDragStart, drag.Delta{}, nil, pointer.Event{}) }()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Call() of an endless loop returned nil")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Call() did not time out")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := LoadString("syntax.lua", `function (`); err == nil {
		t.Error("LoadString() accepted a syntax error")
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.lua"))
	var serr *ScriptError
	if !errors.As(err, &serr) || serr.Func != "" {
		t.Errorf("Load(missing) error = %v, want load ScriptError", err)
	}
}

func TestSandbox(t *testing.T) {
	tests := []string{
		`return io.open("x")`,
		`return os.exit(1)`,
		`return dofile("x")`,
		`return require("os")`,
		`return load("return 1")`,
	}
	for _, code := range tests {
		if _, err := LoadString("sandbox.lua", code); err == nil {
			t.Errorf("LoadString(%q) succeeded", code)
		}
	}

	if _, err := LoadString("ok.lua", `x = math.floor(string.len("abc") / 2); t = {}; table.insert(t, x)`); err != nil {
		t.Errorf("safe libraries unavailable: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.lua")
	code := `function on_drag_end(delta, position, event) draggable.log("end " .. delta.x) end`
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})

	s, err := Load(path, WithLogger(logger))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path() = %q", s.Path())
	}

	cb := s.Callback(FuncDragEnd)
	if cb == nil {
		t.Fatal("Callback(on_drag_end) = nil")
	}
	cb(drag.Delta{X: 7}, geom.Pt(7, 0).Ptr(), pointer.Event{Kind: pointer.KindUp})

	if !strings.Contains(buf.String(), "end 7") {
		t.Errorf("log output = %q, want it to contain %q", buf.String(), "end 7")
	}
}

func TestTouchEventCoordinates(t *testing.T) {
	s, err := LoadString("touch.lua", `function on_drag_start(d, p, e) seen = e.kind .. " " .. e.x .. "," .. e.y .. " " .. e.source end`)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ev := pointer.Event{
		Kind:           pointer.KindTouchStart,
		Touches:        []pointer.Touch{{ID: 1, X: 8, Y: 9}},
		ChangedTouches: []pointer.Touch{{ID: 1, X: 8, Y: 9}},
		Source:         pointer.SourceTouch,
	}
	if err := s.Call(FuncDragStart, drag.Delta{}, nil, ev); err != nil {
		t.Fatal(err)
	}
	if got := s.L.GetGlobal("seen").String(); got != "touchstart 8,9 touch" {
		t.Errorf("seen = %q", got)
	}
}

func TestClose(t *testing.T) {
	s, err := LoadString("x.lua", `function on_drag_start() end`)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if s.Has(FuncDragStart) {
		t.Error("Has() = true after Close")
	}
	if err := s.Call(FuncDragStart, drag.Delta{}, nil, pointer.Event{}); !errors.Is(err, ErrScriptClosed) {
		t.Errorf("Call() after Close error = %v", err)
	}
}

func TestBindChainsCallbacks(t *testing.T) {
	s, err := LoadString("chain.lua", `n = 0; function on_position_change() n = n + 1 end`)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var hostCalls int
	opts := drag.Options{
		OnPositionChange: func(drag.Delta, *geom.Point, pointer.Event) { hostCalls++ },
	}
	s.Bind(&opts)

	if opts.OnDragStart != nil || opts.OnDragEnd != nil {
		t.Error("Bind() set callbacks the script does not define")
	}
	opts.OnPositionChange(drag.Delta{}, nil, pointer.Event{})
	opts.OnPositionChange(drag.Delta{}, nil, pointer.Event{})

	if hostCalls != 2 {
		t.Errorf("host callback ran %d times, want 2", hostCalls)
	}
	if got := s.L.GetGlobal("n").String(); got != "2" {
		t.Errorf("script callback ran %s times, want 2", got)
	}
}

func TestChain(t *testing.T) {
	if Chain(nil, nil) != nil {
		t.Error("Chain(nil, nil) != nil")
	}

	var order []int
	cb := func(i int) drag.Callback {
		return func(drag.Delta, *geom.Point, pointer.Event) { order = append(order, i) }
	}
	Chain(cb(1), nil, cb(2), cb(3))(drag.Delta{}, nil, pointer.Event{})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}
