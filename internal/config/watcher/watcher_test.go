package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func expectQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(d):
	}
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{OpWrite | OpCreate, "write|create"},
		{0, "none"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestEvent_Gone(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{OpWrite, false},
		{OpRemove, true},
		{OpRename, true},
		{OpRemove | OpCreate, false},
		{OpCreate | OpWrite, false},
	}
	for _, tt := range tests {
		if got := (Event{Op: tt.op}).Gone(); got != tt.want {
			t.Errorf("Event{Op: %s}.Gone() = %t, want %t", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
	}{
		{fsnotify.Write, OpWrite},
		{fsnotify.Create | fsnotify.Write, OpCreate | OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, 0},
	}
	for _, tt := range tests {
		if got := convertOp(tt.in); got != tt.want {
			t.Errorf("convertOp(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWatcher_WriteCoalesced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	writeFile(t, path, "a")

	w, err := New(path, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if w.Path() != path {
		t.Errorf("Path() = %q, want %q", w.Path(), path)
	}

	writeFile(t, path, "b")
	writeFile(t, path, "c")
	writeFile(t, path, "d")

	ev := waitEvent(t, w)
	if !ev.Op.Has(OpWrite) {
		t.Errorf("Op = %s, want write", ev.Op)
	}
	if ev.Path != path {
		t.Errorf("Path = %q, want %q", ev.Path, path)
	}
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")

	w, err := New(path, WithDebounce(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.toml"), "x")
	expectQuiet(t, w, 200*time.Millisecond)

	// The watched file may appear after the watcher starts.
	writeFile(t, path, "x")
	if ev := waitEvent(t, w); !ev.Op.Has(OpCreate | OpWrite) {
		t.Errorf("Op = %s, want create or write", ev.Op)
	}
}

func TestWatcher_Remove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	writeFile(t, path, "a: 1")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	ev := waitEvent(t, w)
	if !ev.Gone() {
		t.Errorf("Op = %s, want the file gone", ev.Op)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "scene.toml"))
	if err == nil {
		t.Error("New() succeeded for a missing directory")
	}
}

func TestWatcher_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, ok := <-w.Events(); ok {
		t.Error("Events() not closed")
	}
	if _, ok := <-w.Errors(); ok {
		t.Error("Errors() not closed")
	}
}
