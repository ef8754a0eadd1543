package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/compedit/pkg/util"
)

// EventOp is the kind of change a watcher reports.
type EventOp string

const (
	OpChanged EventOp = "changed"
	OpRemoved EventOp = "removed"
)

// Event is one debounced change to a component file.
type Event struct {
	Op   EventOp `json:"op"`
	Path string  `json:"path"`

	// Summary is set for OpChanged.
	Summary *FileSummary `json:"summary,omitempty"`
}

// Handler receives watcher events on the watcher's goroutines.
type Handler func(Event)

// Watcher re-extracts component files as they change on disk.
//
// Writes to the same file within the debounce window produce one event.
type Watcher struct {
	watcher *fsnotify.Watcher
	scanner *Scanner
	cache   *util.SourceCache
	handler Handler
	logger  *slog.Logger
	root    string

	debounceMu sync.Mutex
	timers     map[string]*time.Timer

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewWatcher creates a watcher that re-extracts through scanner and reports
// through handler.
func NewWatcher(scanner *Scanner, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher: fw,
		scanner: scanner,
		cache:   scanner.cache,
		handler: handler,
		logger:  logger,
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}, nil
}

// Start watches root and every non-excluded directory below it. Events are
// processed until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errors.New("watcher already stopped")
	}
	w.mu.Unlock()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}
	w.root = absRoot

	if err := w.addTree(absRoot); err != nil {
		return err
	}
	w.logger.Info("file watcher started", "root", absRoot)

	go w.loop(ctx)
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.scanner.cfg.excluded(Relative(w.root, path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop ends the watch and cancels pending re-extractions. Safe to call more
// than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)

	w.debounceMu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("file watcher stopped")
	return err
}

// Pending returns the number of files waiting for their debounce timer.
func (w *Watcher) Pending() int {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	return len(w.timers)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	rel := Relative(w.root, ev.Name)
	if w.scanner.cfg.excluded(rel) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !w.scanner.cfg.included(rel) {
		return
	}

	w.logger.Debug("file event", "op", ev.Op.String(), "file", ev.Name)
	switch {
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		w.debounce(ctx, ev.Name)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.remove(ev.Name)
	}
}

func (w *Watcher) debounce(ctx context.Context, path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	delay := time.Duration(w.scanner.cfg.DebounceMs) * time.Millisecond
	if delay <= 0 {
		delay = DefaultDebounceMs * time.Millisecond
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		w.debounceMu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.debounceMu.Unlock()

		summary := w.scanner.ScanFile(ctx, path)
		if summary.Error != "" {
			w.logger.Warn("failed to extract file", "file", path, "error", summary.Error)
		}
		w.emit(Event{Op: OpChanged, Path: path, Summary: &summary})
	})
	w.timers[path] = t
}

func (w *Watcher) remove(path string) {
	w.debounceMu.Lock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
	w.debounceMu.Unlock()

	w.cache.Evict(path)
	w.emit(Event{Op: OpRemoved, Path: path})
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped || w.handler == nil {
		return
	}
	w.handler(ev)
}
