// Package watcher reloads the search engine when the database file changes on disk.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a SQLite database file and invokes a callback when it
// changes. SQLite writes land in bursts across the main file and its -wal,
// -shm, and -journal siblings, so events are debounced into a single
// callback per burst.
type Watcher struct {
	dbPath   string
	dir      string
	targets  map[string]bool
	onChange func()
	debounce time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger // optional; when set, logs debug events
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output (file events, callback firing).
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the debounce interval. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for the database at dbPath. onChange runs once
// events have settled for the debounce interval.
func NewWatcher(dbPath string, onChange func(), opts ...Option) *Watcher {
	clean := filepath.Clean(dbPath)
	base := filepath.Base(clean)
	w := &Watcher{
		dbPath:   clean,
		dir:      filepath.Dir(clean),
		onChange: onChange,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
		targets: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-shm":     true,
			base + "-journal": true,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// The database's directory is watched rather than the file itself, so the
// watch survives the file being deleted and recreated.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if _, err := os.Stat(w.dir); err != nil {
		if !os.IsNotExist(err) {
			w.mu.Unlock()
			return err
		}
		if err := os.MkdirAll(w.dir, 0755); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	if w.logger != nil {
		w.logger.Debug("watcher starting",
			zap.String("database", w.dbPath),
			zap.Duration("debounce", w.debounce))
	}
	w.mu.Unlock()
	go w.run(ctx, watcher)
	return nil
}

// run drains events from its own reference to the fsnotify watcher; Stop
// closes that watcher, which closes both channels and ends the loop.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !w.targets[filepath.Base(ev.Name)] {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if w.logger != nil {
		w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	}
	w.scheduleChange()
}

// scheduleChange resets the debounce timer; the callback fires only after
// the database has been quiet for the full interval.
func (w *Watcher) scheduleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	w.timer = nil
	logger := w.logger
	w.mu.Unlock()
	if logger != nil {
		logger.Debug("database changed, invoking callback", zap.String("path", w.dbPath))
	}
	if w.onChange != nil {
		w.onChange()
	}
}

// Path returns the watched database path.
func (w *Watcher) Path() string {
	return w.dbPath
}

// Stop stops the watcher, cancels any pending callback, and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
