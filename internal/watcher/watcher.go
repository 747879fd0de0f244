// Package watcher watches an inbox directory and schedules dropped files
// for indexing.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// InboxWatcher watches one directory, non-recursively. A file created or
// written there with an allowed extension triggers onFile after a debounce
// window, so partially-copied files settle first. Removals are ignored:
// documents leave the index through the API, not the filesystem.
type InboxWatcher struct {
	dir        string
	extensions []string
	onFile     func(path string)
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	timers     map[string]*time.Timer
	done       chan struct{}
	started    bool
	stopOnce   sync.Once
	logger     *zap.Logger
}

// Option configures an InboxWatcher.
type Option func(*InboxWatcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *InboxWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce overrides the settle window before onFile fires.
func WithDebounce(d time.Duration) Option {
	return func(w *InboxWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over dir. extensions filters which files trigger
// onFile (empty means all).
func New(dir string, extensions []string, onFile func(path string), opts ...Option) *InboxWatcher {
	w := &InboxWatcher{
		dir:        dir,
		extensions: extensions,
		onFile:     onFile,
		debounce:   defaultDebounce,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Files already in the inbox are picked up once, then
// the watcher runs until ctx is cancelled or Stop is called.
func (w *InboxWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.mu.Unlock()
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	w.logger.Debug("inbox watcher starting",
		zap.String("dir", w.dir),
		zap.Strings("extensions", w.extensions))

	w.sweep()
	go w.run(ctx)
	return nil
}

// sweep schedules files that were already sitting in the inbox at startup.
func (w *InboxWatcher) sweep() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("inbox sweep failed", zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if w.matchExtension(path) {
			w.debounceFile(path)
		}
	}
}

func (w *InboxWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("inbox watcher error", zap.Error(err))
			}
		}
	}
}

func (w *InboxWatcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return
	}
	if !w.matchExtension(ev.Name) {
		return
	}
	w.logger.Debug("inbox event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	w.debounceFile(ev.Name)
}

func (w *InboxWatcher) debounceFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		if w.onFile != nil {
			w.onFile(path)
		}
	})
}

func (w *InboxWatcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range w.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// Stop stops the watcher and cancels pending debounce timers.
func (w *InboxWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for path, timer := range w.timers {
			timer.Stop()
			delete(w.timers, path)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.mu.Unlock()
	})
}
