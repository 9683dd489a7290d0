// Package watcher keeps the store in step with the transcripts root: it watches
// the root and its term directories with fsnotify and, after a debounce, hands
// new, changed and removed transcript files to the configured handlers.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Handlers are called with the absolute path of a transcript file, one call
// at a time. OnCreate runs for files that appear, OnChange for files rewritten in place,
// and OnRemove for files that are deleted or renamed away.
type Handlers struct {
	OnCreate func(path string)
	OnChange func(path string)
	OnRemove func(path string)
}

type pending struct {
	timer   *time.Timer
	created bool
}

// Watcher watches a transcripts root one level deep.
type Watcher struct {
	root       string
	extensions []string
	handlers   Handlers
	acceptDir  func(name string) bool
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	handlerMu  sync.Mutex // serializes handler calls
	pending    map[string]*pending
	termDirs   map[string]bool
	done       chan struct{}
	started    bool
	stopOnce   sync.Once
	logger     *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output (directory changes, file events, etc.).
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the quiet period before a file event is handled.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithDirFilter restricts which sub-directories of the root are watched.
// The filter receives the directory's base name. By default every
// non-hidden sub-directory is accepted.
func WithDirFilter(accept func(name string) bool) WatcherOption {
	return func(w *Watcher) { w.acceptDir = accept }
}

// NewWatcher creates a watcher for root. extensions filter which files are
// reported (empty = all).
func NewWatcher(root string, extensions []string, handlers Handlers, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:       filepath.Clean(root),
		extensions: extensions,
		handlers:   handlers,
		acceptDir:  func(name string) bool { return !strings.HasPrefix(name, ".") },
		debounce:   defaultDebounce,
		pending:    make(map[string]*pending),
		termDirs:   make(map[string]bool),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// A missing root is created.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting", zap.String("root", w.root), zap.Strings("extensions", w.extensions))
	if err := w.addRootLocked(); err != nil {
		_ = w.watcher.Close()
		w.watcher = nil
		w.started = false
		w.mu.Unlock()
		return err
	}
	events, errs := w.watcher.Events, w.watcher.Errors
	w.mu.Unlock()
	go w.run(ctx, events, errs)
	return nil
}

func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	parent := filepath.Dir(path)
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))

	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if parent == w.root {
				w.handleNewDirectory(path)
			}
			return
		}
		if w.isTranscriptPath(path) {
			w.schedule(path, true)
		}
	case ev.Has(fsnotify.Write):
		if w.isTranscriptPath(path) {
			w.schedule(path, false)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if parent == w.root {
			w.mu.Lock()
			wasTermDir := w.termDirs[path]
			delete(w.termDirs, path)
			w.mu.Unlock()
			if wasTermDir {
				w.logger.Info("term directory removed", zap.String("path", path))
			}
			return
		}
		if w.isTranscriptPath(path) {
			w.cancel(path)
			w.call(w.handlers.OnRemove, path)
		}
	}
}

// handleNewDirectory starts watching a term directory that appeared under the
// root and schedules every transcript already inside it.
func (w *Watcher) handleNewDirectory(dir string) {
	if !w.acceptDir(filepath.Base(dir)) {
		w.logger.Debug("watcher ignoring directory", zap.String("path", dir))
		return
	}
	w.mu.Lock()
	if w.watcher == nil {
		w.mu.Unlock()
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Unlock()
		w.logger.Warn("watcher failed to add directory", zap.String("path", dir), zap.Error(err))
		return
	}
	w.termDirs[dir] = true
	w.mu.Unlock()
	w.logger.Info("term directory added", zap.String("path", dir))

	for _, f := range w.transcriptFiles(dir) {
		w.schedule(f, true)
	}
}

func (w *Watcher) isTranscriptPath(path string) bool {
	w.mu.Lock()
	inTermDir := w.termDirs[filepath.Dir(path)]
	w.mu.Unlock()
	if !inTermDir || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return matchExtension(path, w.extensions)
}

func matchExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	if len(extensions) == 0 {
		return true
	}
	for _, e := range extensions {
		eNorm := strings.TrimPrefix(strings.ToLower(e), ".")
		extNorm := strings.TrimPrefix(strings.ToLower(ext), ".")
		if eNorm == extNorm {
			return true
		}
	}
	return false
}

// schedule (re)starts the debounce timer for path. A file created and then
// written within one debounce window is still reported as created.
func (w *Watcher) schedule(path string, created bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		created = created || p.created
	}
	p := &pending{created: created}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.pending[path] != p {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()
		w.fire(path, created)
	})
	w.pending[path] = p
}

func (w *Watcher) fire(path string, created bool) {
	if created {
		w.logger.Debug("watcher processing new file", zap.String("path", path))
		w.call(w.handlers.OnCreate, path)
		return
	}
	w.logger.Debug("watcher reprocessing changed file", zap.String("path", path))
	w.call(w.handlers.OnChange, path)
}

func (w *Watcher) call(handler func(path string), path string) {
	if handler == nil {
		return
	}
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	handler(path)
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) addRootLocked() error {
	if _, err := os.Stat(w.root); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(w.root, 0755); err != nil {
			return err
		}
	}
	if err := w.watcher.Add(w.root); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || !w.acceptDir(e.Name()) {
			continue
		}
		dir := filepath.Join(w.root, e.Name())
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.termDirs[dir] = true
	}
	return nil
}

func (w *Watcher) transcriptFiles(dir string) []string {
	var files []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("watcher failed to read directory", zap.String("path", dir), zap.Error(err))
		return nil
	}
	for _, e := range entries {
		if e.Type()&fs.ModeType != 0 || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if matchExtension(e.Name(), w.extensions) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files
}

// Directories returns the watched term directories in sorted order.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.termDirs))
	for d := range w.termDirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// SyncExistingFiles reports every transcript already present in the watched
// term directories through OnCreate, synchronously.
// Call this after Start() to pick up files that were present before the watcher started.
func (w *Watcher) SyncExistingFiles() {
	dirs := w.Directories()
	w.logger.Debug("watcher syncing existing files", zap.Strings("dirs", dirs))
	if w.handlers.OnCreate == nil {
		return
	}
	for _, dir := range dirs {
		for _, f := range w.transcriptFiles(dir) {
			w.call(w.handlers.OnCreate, f)
		}
	}
}

// Stop stops the watcher and releases resources. Pending events are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
