// Package watcher watches roster drop folders and reports workbooks that are
// created or replaced there.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// ErrNoWorkbook is returned by Latest when no drop folder holds a workbook.
var ErrNoWorkbook = errors.New("no workbook in drop folders")

// Watcher watches drop folders and calls onChange once a workbook has settled.
// Uploads usually arrive as a burst of writes, so events for the same path are
// coalesced until the debounce interval passes quietly.
type Watcher struct {
	dirs       []string
	extensions []string
	onChange   func(path string)
	debounce   time.Duration
	fsw        *fsnotify.Watcher
	mu         sync.Mutex
	pending    map[string]*time.Timer
	done       chan struct{}
	started    bool
	stopOnce   sync.Once
	logger     *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must stay quiet before onChange fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over dirs. extensions filters workbook files;
// empty accepts any file that is not an office lock or temp file.
func NewWatcher(dirs, extensions []string, onChange func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		dirs:       dirs,
		extensions: extensions,
		onChange:   onChange,
		debounce:   defaultDebounce,
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start creates missing drop folders and begins watching. It runs until ctx is
// cancelled or Stop is called.
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
	for _, dir := range w.dirs {
		dir = filepath.Clean(dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = fsw.Close()
			return err
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	w.started = true
	w.logger.Info("Watching drop folders",
		zap.Strings("dirs", w.dirs),
		zap.Strings("extensions", w.extensions),
		zap.Duration("debounce", w.debounce))
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
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !Candidate(path, w.extensions) {
		return
	}
	w.logger.Debug("Drop folder event", zap.String("op", ev.Op.String()), zap.String("path", path))
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.cancel(path)
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	w.schedule(path)
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
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		onChange := w.onChange
		w.mu.Unlock()
		w.logger.Info("Workbook settled", zap.String("path", path))
		if onChange != nil {
			onChange(path)
		}
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

// Candidate reports whether path looks like a roster workbook: the extension
// matches and the name is not an office lock file, temp file or dotfile.
func Candidate(path string, extensions []string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// Latest returns the most recently modified workbook across the drop folders.
func (w *Watcher) Latest() (string, error) {
	var (
		newest  string
		newestT time.Time
	)
	for _, dir := range w.Directories() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !Candidate(e.Name(), w.extensions) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if newest == "" || info.ModTime().After(newestT) {
				newest = filepath.Join(dir, e.Name())
				newestT = info.ModTime()
			}
		}
	}
	if newest == "" {
		return "", ErrNoWorkbook
	}
	return newest, nil
}

// SyncLatest hands the newest existing workbook to onChange, so a roster
// dropped while the service was down still gets published.
func (w *Watcher) SyncLatest() bool {
	path, err := w.Latest()
	if err != nil {
		w.logger.Debug("No workbook to sync", zap.Error(err))
		return false
	}
	w.logger.Info("Syncing latest workbook", zap.String("path", path))
	if w.onChange != nil {
		w.onChange(path)
	}
	return true
}

// Directories returns a copy of the watched drop folders.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.dirs...)
}

// Stop stops the watcher and drops pending callbacks.
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
