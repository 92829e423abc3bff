// Package watcher keeps the index in step with course material directories: files created
// or written are re-ingested after a quiet period and removed files are dropped.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Sink receives the debounced file changes. *indexer.Ingester implements it.
type Sink interface {
	Allowed(path string) bool
	IngestFile(ctx context.Context, path string) (int, error)
	Remove(path string) int
}

// Watcher watches material directories and forwards changes to a Sink.
type Watcher struct {
	sink      Sink
	recursive bool
	debounce  time.Duration
	onChange  func(ctx context.Context)
	logger    *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	roots     []string
	rootPaths map[string][]string // root -> directories added to fsnotify
	pending   map[string]*time.Timer
	fsw       *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must stay quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnChange registers fn to run after each ingest or removal, e.g. to embed new chunks.
func WithOnChange(fn func(ctx context.Context)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// New creates a watcher over roots. Call Start to begin watching.
func New(roots []string, recursive bool, sink Sink, opts ...Option) *Watcher {
	w := &Watcher{
		sink:      sink,
		recursive: recursive,
		debounce:  defaultDebounce,
		ctx:       context.Background(),
		rootPaths: make(map[string][]string),
		pending:   make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}
	for _, r := range roots {
		if abs, err := filepath.Abs(r); err == nil {
			w.roots = append(w.roots, filepath.Clean(abs))
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start creates missing roots, registers them with fsnotify, and handles events until ctx
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	w.ctx = ctx
	for _, root := range w.roots {
		if err := w.addRootLocked(root); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			return err
		}
	}
	if w.logger != nil {
		w.logger.Debug("watcher started",
			zap.Strings("roots", w.roots),
			zap.Bool("recursive", w.recursive),
			zap.Duration("debounce", w.debounce))
	}
	go w.run(ctx, fsw)
	return nil
}

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
			if w.logger != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.underRoot(path) {
		return
	}
	if w.logger != nil {
		w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	}
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
		if w.sink.Allowed(path) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		// A rename reports the old name; the new name arrives as a Create.
		w.cancel(path)
		if w.sink.Allowed(path) {
			if n := w.sink.Remove(path); n > 0 {
				w.changed()
			}
		}
	}
}

// handleNewDirectory watches a directory created (or moved) under a root and ingests the
// files already inside it. Non-recursive watchers ignore subdirectories.
func (w *Watcher) handleNewDirectory(dir string) {
	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil || !w.recursive {
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			w.addWatch(fsw, path)
		}
		return nil
	})
	w.syncDirectory(dir)
}

func (w *Watcher) addWatch(fsw *fsnotify.Watcher, dir string) {
	if err := fsw.Add(dir); err != nil {
		if w.logger != nil {
			w.logger.Debug("watcher failed to add directory", zap.String("path", dir), zap.Error(err))
		}
		return
	}
	w.mu.Lock()
	for _, root := range w.roots {
		if inDir(root, dir) {
			w.rootPaths[root] = append(w.rootPaths[root], dir)
			break
		}
	}
	w.mu.Unlock()
}

func (w *Watcher) underRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if inDir(root, path) {
			return w.recursive || filepath.Dir(path) == root || path == root
		}
	}
	return false
}

// inDir reports whether path is dir or lies beneath it.
func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		ctx := w.ctx
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	n, err := w.sink.IngestFile(ctx, path)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("watcher ingest failed", zap.String("path", path), zap.Error(err))
		}
		return
	}
	if n > 0 {
		w.changed()
	}
}

func (w *Watcher) changed() {
	if w.onChange == nil {
		return
	}
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	w.onChange(ctx)
}

// AddDirectory starts watching root and, when syncExisting is set, ingests its files in
// the background.
func (w *Watcher) AddDirectory(root string, syncExisting bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	for _, r := range w.roots {
		if r == abs {
			w.mu.Unlock()
			return nil
		}
	}
	if w.fsw != nil {
		if err := w.addRootLocked(abs); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	w.roots = append(w.roots, abs)
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Debug("watcher directory added", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	}
	if syncExisting {
		go w.syncDirectory(abs)
	}
	return nil
}

func (w *Watcher) addRootLocked(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	var paths []string
	if w.recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if err := w.fsw.Add(path); err != nil {
				return err
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		if err := w.fsw.Add(root); err != nil {
			return err
		}
		paths = append(paths, root)
	}
	w.rootPaths[root] = paths
	return nil
}

// syncDirectory ingests every allowed file under dir (only its direct children when the
// watcher is not recursive).
func (w *Watcher) syncDirectory(dir string) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	changed := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if path != dir && !w.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.sink.Allowed(path) {
			return nil
		}
		n, ingestErr := w.sink.IngestFile(ctx, path)
		if ingestErr != nil {
			if w.logger != nil {
				w.logger.Warn("watcher sync ingest failed", zap.String("path", path), zap.Error(ingestErr))
			}
			return nil
		}
		changed = changed || n > 0
		return nil
	})
	if changed {
		w.changed()
	}
}

// RemoveDirectory stops watching root. Already ingested files stay in the index.
func (w *Watcher) RemoveDirectory(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range w.roots {
		if r != abs {
			continue
		}
		if w.fsw != nil {
			for _, p := range w.rootPaths[abs] {
				_ = w.fsw.Remove(p)
			}
		}
		delete(w.rootPaths, abs)
		w.roots = append(w.roots[:i], w.roots[i+1:]...)
		if w.logger != nil {
			w.logger.Debug("watcher directory removed", zap.String("path", abs))
		}
		return nil
	}
	return nil
}

// Directories returns a copy of the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// SyncExistingFiles ingests the files already present in every root. Call it after Start.
func (w *Watcher) SyncExistingFiles() {
	for _, root := range w.Directories() {
		w.syncDirectory(root)
	}
}

// Stop stops watching and cancels pending ingests. It is safe to call more than once; a
// stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()
	if fsw != nil {
		_ = fsw.Close()
	}
	w.stopOnce.Do(func() { close(w.done) })
}
