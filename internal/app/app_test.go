package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dshills/draggable/internal/config"
	"github.com/dshills/draggable/internal/config/watcher"
	"github.com/dshills/draggable/internal/drag"
	"github.com/dshills/draggable/internal/geom"
	"github.com/dshills/draggable/internal/logging"
	"github.com/dshills/draggable/internal/renderer/backend"
	"github.com/dshills/draggable/internal/scene"
)

const testScene = `
[watch]
enabled = false

[[box]]
id = "desk"
left = 0
top = 0
width = 40
height = 20

[[box]]
id = "notes"
left = 2
top = 2
width = 10
height = 4
handle = "title"
bounding_element = "desk"
`

func writeScene(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func newTestApp(t *testing.T, content string) (*Application, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	writeScene(t, path, content)

	app, err := New(Options{
		ConfigPath: path,
		Logger:     logging.Discard(),
		Clock:      clockwork.NewFakeClock(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app, path
}

func mouseAt(x, y int, buttons backend.ButtonMask) backend.Event {
	return backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, Buttons: buttons}
}

func keyRune(r rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}
}

// dragEvents presses the primary button at from, moves to to and releases.
func dragEvents(from, to geom.Point) []backend.Event {
	return []backend.Event{
		mouseAt(from.Left, from.Top, backend.ButtonPrimary),
		mouseAt(to.Left, to.Top, backend.ButtonPrimary),
		mouseAt(to.Left, to.Top, backend.ButtonNone),
	}
}

func feed(t *testing.T, app *Application, events ...backend.Event) {
	t.Helper()
	for _, ev := range events {
		if err := app.handleBackendEvent(ev); err != nil {
			t.Fatalf("handleBackendEvent(%+v): %v", ev, err)
		}
	}
}

func position(t *testing.T, app *Application, id string) geom.Point {
	t.Helper()
	box, ok := app.Scene().Box(id)
	if !ok {
		t.Fatalf("box %q not found", id)
	}
	return box.Rect.Position()
}

func TestNewBuildsScene(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	if n := len(app.Scene().Boxes()); n != 2 {
		t.Fatalf("boxes = %d, want 2", n)
	}
	for _, id := range []string{"desk", "notes"} {
		box, _ := app.Scene().Box(id)
		if !app.Drag().Armed(box) {
			t.Errorf("%s not armed", id)
		}
	}
	if got := app.Scene().Status(); got != helpText {
		t.Errorf("status = %q, want help text", got)
	}
	if app.watcher != nil {
		t.Error("watcher started although disabled")
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Logger:     logging.Discard(),
	})
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("err = %v, want InitError", err)
	}
	if initErr.Component != "config" {
		t.Errorf("component = %q, want config", initErr.Component)
	}
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestNewWithoutConfig(t *testing.T) {
	app, err := New(Options{Logger: logging.Discard(), Touch: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Shutdown()

	if n := len(app.Scene().Boxes()); n != 0 {
		t.Errorf("boxes = %d, want 0", n)
	}
	if !app.Translator().EmulateTouch() {
		t.Error("Touch option not applied")
	}
}

func TestDragByTitle(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)

	if got, want := position(t, app, "notes"), geom.Pt(7, 5); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
	if got, want := app.Scene().Status(), "end notes +5,+3 (7,5)"; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
	if app.Drag().Dragging(mustBox(t, app, "notes")) {
		t.Error("still dragging after release")
	}
}

func TestDragOutsideHandleIgnored(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	// The body of notes is not its handle.
	feed(t, app, dragEvents(geom.Pt(3, 4), geom.Pt(9, 8))...)

	if got, want := position(t, app, "notes"), geom.Pt(2, 2); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
}

func TestDragClampedToBoundingElement(t *testing.T) {
	app, _ := newTestApp(t, testScene)
	b := backend.NewNullBackend(80, 24)
	if err := app.SetBackend(b); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}

	feed(t, app,
		mouseAt(3, 2, backend.ButtonPrimary),
		mouseAt(60, 30, backend.ButtonPrimary),
		mouseAt(70, 40, backend.ButtonPrimary),
		mouseAt(70, 40, backend.ButtonNone),
	)

	// desk is 40x20 and notes 10x4.
	if got, want := position(t, app, "notes"), geom.Pt(30, 16); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
	if got := b.Beeps(); got != 1 {
		t.Errorf("beeps = %d, want 1 per gesture", got)
	}
	if got := testutil.ToFloat64(app.Metrics().Clamped.WithLabelValues("notes")); got != 2 {
		t.Errorf("clamped moves = %v, want 2", got)
	}
	if got := testutil.ToFloat64(app.Metrics().GesturesEnded.WithLabelValues("notes")); got != 1 {
		t.Errorf("ended = %v, want 1", got)
	}
}

func TestDoubleClickTitleResets(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)
	feed(t, app,
		mouseAt(8, 5, backend.ButtonPrimary),
		mouseAt(8, 5, backend.ButtonNone),
		mouseAt(8, 5, backend.ButtonPrimary),
		mouseAt(8, 5, backend.ButtonNone),
	)

	if got, want := position(t, app, "notes"), geom.Pt(2, 2); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
}

func TestKeyReset(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)
	feed(t, app, keyRune('r'))

	if got, want := position(t, app, "notes"), geom.Pt(2, 2); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
	if got := app.Scene().Status(); got != "reset notes" {
		t.Errorf("status = %q", got)
	}
}

func TestKeyResetWithoutBox(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	feed(t, app, mouseAt(70, 22, backend.ButtonNone), keyRune('r'))

	if got := app.Scene().Status(); got != ErrNoBoxUnderPointer.Error() {
		t.Errorf("status = %q, want %q", got, ErrNoBoxUnderPointer)
	}
}

func TestKeyStopToggle(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	feed(t, app, mouseAt(3, 2, backend.ButtonNone), keyRune('s'))
	if got := app.Scene().Status(); got != "stopped notes" {
		t.Fatalf("status = %q", got)
	}

	if app.Scene().Draggable("notes") {
		t.Error("stopped notes still draggable")
	}
	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)
	if got, want := position(t, app, "notes"), geom.Pt(2, 2); got != want {
		t.Errorf("stopped notes moved to %v", got)
	}

	feed(t, app, keyRune('s'))
	if got := app.Scene().Status(); got != "dragging notes" {
		t.Fatalf("status = %q", got)
	}
	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)
	if got, want := position(t, app, "notes"), geom.Pt(7, 5); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
}

func TestKeyTouchToggle(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	feed(t, app, keyRune('t'))
	if !app.Translator().EmulateTouch() {
		t.Fatal("touch emulation not turned on")
	}
	if got := app.Scene().Status(); got != "touch emulation on" {
		t.Errorf("status = %q", got)
	}

	feed(t, app, keyRune('t'))
	if app.Translator().EmulateTouch() {
		t.Error("touch emulation not turned off")
	}
}

func TestTouchDragNeedsAllowTouch(t *testing.T) {
	content := strings.Replace(testScene, `handle = "title"`, "handle = \"title\"\nallow_touch = true", 1)
	app, _ := newTestApp(t, content)
	feed(t, app, keyRune('t'))

	feed(t, app,
		mouseAt(3, 2, backend.ButtonMiddle),
		mouseAt(8, 5, backend.ButtonMiddle),
		mouseAt(8, 5, backend.ButtonNone),
	)
	if got, want := position(t, app, "notes"), geom.Pt(7, 5); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}

	// desk does not accept touch.
	feed(t, app,
		mouseAt(30, 0, backend.ButtonMiddle),
		mouseAt(35, 3, backend.ButtonMiddle),
		mouseAt(35, 3, backend.ButtonNone),
	)
	if got, want := position(t, app, "desk"), geom.Pt(0, 0); got != want {
		t.Errorf("desk at %v, want %v", got, want)
	}
}

func TestQuitKeys(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	for _, ev := range []backend.Event{
		keyRune('q'),
		{Type: backend.EventKey, Key: backend.KeyCtrlC},
	} {
		if err := app.handleBackendEvent(ev); !errors.Is(err, ErrQuit) {
			t.Errorf("handleBackendEvent(%+v) = %v, want ErrQuit", ev, err)
		}
	}
}

func TestReload(t *testing.T) {
	app, path := newTestApp(t, testScene)
	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)

	writeScene(t, path, `
[watch]
enabled = false

[[box]]
id = "notes"
label = "Todo"
left = 2
top = 2
width = 12
height = 4
handle = "title"

[[box]]
id = "extra"
left = 20
top = 10
width = 8
height = 3
`)
	feed(t, app, backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlR})

	if got := app.Scene().Status(); got != "reloaded" {
		t.Fatalf("status = %q", got)
	}
	if _, ok := app.Scene().Box("desk"); ok {
		t.Error("desk not removed")
	}
	notes := mustBox(t, app, "notes")
	if notes.Label != "Todo" || notes.Rect.Width() != 12 {
		t.Errorf("notes = %+v, want label Todo width 12", notes)
	}
	if got, want := notes.Rect.Position(), geom.Pt(7, 5); got != want {
		t.Errorf("notes moved to %v on reload, want %v", got, want)
	}
	if !app.Drag().Armed(mustBox(t, app, "extra")) {
		t.Error("extra not armed")
	}
	if !slices.Contains(app.Drag().Elements(), "extra") {
		t.Error("extra has no session")
	}
	if got := testutil.ToFloat64(app.Metrics().ConfigReloads.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok reloads = %v, want 1", got)
	}

	// notes is no longer bounded.
	feed(t, app, dragEvents(geom.Pt(8, 5), geom.Pt(68, 5))...)
	if got, want := position(t, app, "notes"), geom.Pt(67, 5); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
}

func TestReloadInvalidKeepsScene(t *testing.T) {
	app, path := newTestApp(t, testScene)

	writeScene(t, path, "[[box]]\nid = \"desk\"\nwidth = 1\nheight = 1\n")
	app.reloadNow()

	if got := app.Scene().Status(); !strings.HasPrefix(got, "reload failed") {
		t.Errorf("status = %q", got)
	}
	if n := len(app.Scene().Boxes()); n != 2 {
		t.Errorf("boxes = %d, want 2", n)
	}
	if got := testutil.ToFloat64(app.Metrics().ConfigReloads.WithLabelValues("error")); got != 1 {
		t.Errorf("error reloads = %v, want 1", got)
	}
}

func TestReloadRemovedFile(t *testing.T) {
	app, path := newTestApp(t, testScene)

	app.reload(watcher.Event{Path: path, Op: watcher.OpRemove})

	if got := app.Scene().Status(); got != "config removed" {
		t.Errorf("status = %q", got)
	}
	if n := len(app.Scene().Boxes()); n != 2 {
		t.Errorf("boxes = %d, want 2", n)
	}
}

func TestScriptHooks(t *testing.T) {
	content := testScene + "script = \"hook.lua\"\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	writeScene(t, path, content)
	writeScene(t, filepath.Join(dir, "hook.lua"), `
function on_drag_end(delta, pos, ev)
  draggable.status(draggable.element .. " moved " .. delta.x .. "," .. delta.y)
end
`)

	app, err := New(Options{ConfigPath: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Shutdown()

	if _, ok := app.scripts["notes"]; !ok {
		t.Fatal("script not loaded")
	}
	feed(t, app, dragEvents(geom.Pt(3, 2), geom.Pt(8, 5))...)

	if got, want := app.Scene().Status(), "notes moved 5,3"; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
}

func TestBadScriptKeepsBox(t *testing.T) {
	content := testScene + "script = \"missing.lua\"\n"
	app, _ := newTestApp(t, content)

	notes := mustBox(t, app, "notes")
	if !app.Drag().Armed(notes) {
		t.Error("notes not armed")
	}
	if _, ok := app.scripts["notes"]; ok {
		t.Error("missing script recorded")
	}
}

func TestRun(t *testing.T) {
	app, _ := newTestApp(t, testScene)
	b := backend.NewNullBackend(80, 24)
	if err := app.SetBackend(b); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}

	for _, ev := range dragEvents(geom.Pt(3, 2), geom.Pt(8, 5)) {
		b.PostEvent(ev)
	}
	b.PostEvent(keyRune('q'))

	if err := app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run = %v, want ErrQuit", err)
	}
	if got, want := position(t, app, "notes"), geom.Pt(7, 5); got != want {
		t.Errorf("notes at %v, want %v", got, want)
	}
	if w, h := app.Scene().Size(); w != 80 || h != 24 {
		t.Errorf("scene size = %dx%d, want 80x24", w, h)
	}
	if b.Shows() == 0 {
		t.Error("nothing rendered")
	}
	if !b.MouseEnabled() {
		t.Error("mouse reporting not enabled")
	}
	if !strings.HasPrefix(b.Row(23), "end notes") {
		t.Errorf("status row = %q", b.Row(23))
	}
	if app.IsRunning() {
		t.Error("still running after Run returned")
	}
	if err := app.SetBackend(b); err != nil {
		t.Errorf("SetBackend after Run: %v", err)
	}
}

func TestRunResetsTranslator(t *testing.T) {
	app, _ := newTestApp(t, testScene)
	feed(t, app, mouseAt(3, 2, backend.ButtonPrimary))
	if _, ok := app.Translator().Position(); !ok {
		t.Fatal("position not recorded")
	}

	b := backend.NewNullBackend(80, 24)
	app.SetBackend(b)
	b.PostEvent(keyRune('q'))
	if err := app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run = %v, want ErrQuit", err)
	}
	if p, ok := app.Translator().Position(); ok {
		t.Errorf("position %v carried over into Run", p)
	}
}

func TestStopFromAnotherGoroutine(t *testing.T) {
	content := testScene + "script = \"hook.lua\"\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	writeScene(t, path, content)
	writeScene(t, filepath.Join(dir, "hook.lua"), "function on_drag_end(delta, pos, ev) end\n")

	app, err := New(Options{ConfigPath: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	app.SetBackend(backend.NewNullBackend(80, 24))

	result := make(chan error, 1)
	go func() { result <- app.Run() }()
	for deadline := time.Now().Add(2 * time.Second); !app.IsRunning(); {
		if time.Now().After(deadline) {
			t.Fatal("Run did not start")
		}
		time.Sleep(time.Millisecond)
	}

	app.Stop()
	app.Stop()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if n := len(app.scripts); n != 1 {
		t.Errorf("scripts after Stop = %d, want 1", n)
	}
	app.Shutdown()
	if n := len(app.scripts); n != 0 {
		t.Errorf("scripts after Shutdown = %d, want 0", n)
	}
}

func TestInputPollingKeepsEvents(t *testing.T) {
	app, _ := newTestApp(t, testScene)
	b := backend.NewNullBackend(80, 24)
	app.backend = b
	app.running.Store(true)
	t.Cleanup(func() { app.running.Store(false) })

	events := app.startInputPolling()
	for i := 0; i < 100; i++ {
		b.PostEvent(mouseAt(i, 0, backend.ButtonNone))
	}
	for deadline := time.Now().Add(2 * time.Second); len(events) < cap(events); {
		if time.Now().After(deadline) {
			t.Fatalf("queued %d events, want %d", len(events), cap(events))
		}
		time.Sleep(time.Millisecond)
	}
	for i := 100; i < 150; i++ {
		b.PostEvent(mouseAt(i, 0, backend.ButtonNone))
	}

	for want := 0; want < 150; want++ {
		select {
		case ev := <-events:
			if ev.MouseX != want {
				t.Fatalf("event %d has x %d", want, ev.MouseX)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d events, want 150", want)
		}
	}
}

func TestRunErrors(t *testing.T) {
	app, _ := newTestApp(t, testScene)

	if err := app.Run(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run without backend = %v, want ErrNoBackend", err)
	}

	app.SetBackend(backend.NewNullBackend(80, 24))
	app.Shutdown()
	if err := app.Run(); err != nil {
		t.Errorf("Run after Shutdown = %v, want nil", err)
	}
}

func TestBoundsWarnings(t *testing.T) {
	tests := []struct {
		name string
		box  string
		want string
	}{
		{
			name: "too large",
			box:  "left = 2\ntop = 2\nwidth = 50\nheight = 4\n",
			want: "box wide (50x4) does not fit its bounds",
		},
		{
			name: "outside",
			box:  "left = 35\ntop = 2\nwidth = 10\nheight = 4\n",
			want: "box wide at [35,2 10x4] starts outside its bounds [0,0 40x20]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := testScene + "\n[[box]]\nid = \"wide\"\nbounding_element = \"desk\"\n" + tt.box
			path := filepath.Join(t.TempDir(), "scene.toml")
			writeScene(t, path, content)

			var buf bytes.Buffer
			app, err := New(Options{
				ConfigPath: path,
				Logger:     logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf}),
			})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer app.Shutdown()

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log missing %q:\n%s", tt.want, buf.String())
			}
			if out := buf.String(); strings.Contains(out, "box notes (") || strings.Contains(out, "box notes at") {
				t.Errorf("notes reported although it fits:\n%s", buf.String())
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name  string
		delta drag.Delta
		pos   *geom.Point
		want  string
	}{
		{"positive", drag.Delta{X: 5, Y: 3}, geom.Pt(7, 5).Ptr(), "move notes +5,+3 (7,5)"},
		{"negative", drag.Delta{X: -2, Y: 0}, geom.Pt(0, 5).Ptr(), "move notes -2,+0 (0,5)"},
		{"no position", drag.Delta{}, nil, "move notes +0,+0 -"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatus("move", "notes", tt.delta, tt.pos); got != tt.want {
				t.Errorf("formatStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func mustBox(t *testing.T, app *Application, id string) *scene.Box {
	t.Helper()
	box, ok := app.Scene().Box(id)
	if !ok {
		t.Fatalf("box %q not found", id)
	}
	return box
}
