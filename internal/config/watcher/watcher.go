// Package watcher reports changes to the scene file for live reload.
//
// The watcher listens on the file's directory rather than the file itself,
// so editors that save by writing a new file and renaming it over the old
// one are still seen. Bursts of changes are coalesced into one Event once
// the file has been quiet for the debounce interval.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/draggable/internal/logging"
)

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Op is a set of file operations.
type Op uint8

const (
	// OpWrite indicates the file was modified.
	OpWrite Op = 1 << iota
	// OpCreate indicates the file was created.
	OpCreate
	// OpRemove indicates the file was deleted.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpWrite, "write"},
	{OpCreate, "create"},
	{OpRemove, "remove"},
	{OpRename, "rename"},
}

// Has returns true if op includes other.
func (op Op) Has(other Op) bool {
	return op&other != 0
}

// String returns the operation names joined by "|".
func (op Op) String() string {
	var parts []string
	for _, n := range opNames {
		if op.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Event is a coalesced change to the watched file.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string
	// Op holds every operation seen since the previous event.
	Op Op
	// Time is when the event was emitted.
	Time time.Time
}

// Gone returns true if the file no longer exists at Path.
func (e Event) Gone() bool {
	return e.Op.Has(OpRemove|OpRename) && !e.Op.Has(OpCreate)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before an event is
// emitted. Zero emits every change immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches a single file.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *logging.Logger

	events chan Event
	errors chan error

	timer   *time.Timer
	pending Op

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New starts watching the file at path. The file itself need not exist
// yet, but its directory must.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: 100 * time.Millisecond,
		logger:   logging.Discard(),
		events:   make(chan Event, 16),
		errors:   make(chan error, 16),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.processLoop()

	w.logger.Debug("watching %s", abs)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	err := w.fsw.Close()

	w.mu.Lock()
	close(w.events)
	close(w.errors)
	w.mu.Unlock()
	return err
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if op := convertOp(ev.Op); op != 0 {
				w.schedule(op)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify: %v", err)
			w.mu.Lock()
			if !w.closed {
				select {
				case w.errors <- err:
				default:
				}
			}
			w.mu.Unlock()
		}
	}
}

// schedule records op and (re)starts the debounce timer.
func (w *Watcher) schedule(op Op) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending |= op

	if w.debounce == 0 {
		w.flushLocked()
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.flushLocked()
}

// flushLocked emits the pending operations. The caller holds w.mu.
func (w *Watcher) flushLocked() {
	if w.pending == 0 {
		return
	}
	ev := Event{Path: w.path, Op: w.pending, Time: time.Now()}
	w.pending = 0

	select {
	case w.events <- ev:
		w.logger.Debug("%s changed (%s)", w.path, ev.Op)
	default:
		w.logger.Warn("event channel full, dropping %s", ev.Op)
	}
}

// convertOp converts fsnotify.Op to Op. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
