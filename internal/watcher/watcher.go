// Package watcher reports files created or modified under watched directories, with debouncing.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/textintel/pkg/utils"
)

// DefaultDebounce is the quiet period after the last write before a file is reported.
const DefaultDebounce = 400 * time.Millisecond

// Config selects what to watch.
type Config struct {
	Roots []string
	// Extensions filters reported files; empty reports everything.
	Extensions []string
	Recursive  bool
	Debounce   time.Duration
}

// Watcher calls onChange once a created or modified file has been quiet for the debounce period.
type Watcher struct {
	cfg      Config
	onChange func(path string)
	logger   *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	started bool

	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = utils.OrNop(l) }
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config, onChange func(path string), opts ...Option) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	cfg.Roots = append([]string(nil), cfg.Roots...)
	w := &Watcher{
		cfg:      cfg,
		onChange: onChange,
		logger:   zap.NewNop(),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching every root. It runs until ctx is cancelled or Stop is called.
// Roots must be existing directories.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for i, root := range w.cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: %w", root, err)
		}
		if !info.IsDir() {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: not a directory", root)
		}
		if err := w.addTree(fsw, abs); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: %w", root, err)
		}
		w.cfg.Roots[i] = abs
	}
	w.fsw = fsw
	w.started = true
	w.logger.Info("watching directories",
		zap.Strings("roots", w.cfg.Roots),
		zap.Strings("extensions", w.cfg.Extensions),
		zap.Bool("recursive", w.cfg.Recursive))
	go w.run(ctx, fsw)
	return nil
}

// addTree watches dir, and its subdirectories when recursive.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.cfg.Recursive {
		return fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
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
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) && w.cfg.Recursive {
				// Files may land in the directory before it is watched, so walk it too.
				if err := w.addTree(fsw, ev.Name); err != nil {
					w.logger.Warn("watch new directory failed", zap.String("path", ev.Name), zap.Error(err))
				}
				w.walk(ev.Name, w.schedule)
			}
			return
		}
		if MatchExtension(ev.Name, w.cfg.Extensions) {
			w.schedule(ev.Name)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(ev.Name)
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.onChange(path)
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

// SyncExisting reports every matching file already under the roots, synchronously.
func (w *Watcher) SyncExisting() {
	for _, root := range w.Directories() {
		w.walk(root, w.onChange)
	}
}

func (w *Watcher) walk(root string, fn func(string)) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("walk error", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != root && !w.cfg.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if MatchExtension(path, w.cfg.Extensions) {
			fn(path)
		}
		return nil
	})
}

// Directories returns the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.cfg.Roots...)
}

// Stop cancels pending reports and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	_ = w.fsw.Close()
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}

// MatchExtension reports whether path has one of extensions, ignoring case and the leading dot.
// An empty list matches everything.
func MatchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
