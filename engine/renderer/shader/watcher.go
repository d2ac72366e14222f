package shader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/signal"
	"github.com/fsnotify/fsnotify"
)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       sync.Mutex
	library  Library
	fs       *fsnotify.Watcher
	debounce time.Duration
	changed  signal.Signal[string]
	done     chan struct{}
	started  bool
}

// Watcher reloads a directory-backed Library when its template files change and
// announces each successful reload through OnChanged. Emission happens on the
// watcher goroutine; subscribers must hand the work over to the render thread.
type Watcher interface {
	// Start begins watching until ctx is cancelled or Close is called.
	//
	// Parameters:
	//   - ctx: context bounding the watch loop
	//
	// Returns:
	//   - error: error if the watcher was already started
	Start(ctx context.Context) error

	// OnChanged is emitted with the changed file name after a successful reload.
	OnChanged() *signal.Signal[string]

	// Close stops watching and releases the OS watcher.
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a watcher over library.Dir().
//
// Parameters:
//   - library: a Library created with WithDir
//   - debounce: quiet period collapsing bursts of editor writes; <= 0 uses 100ms
//
// Returns:
//   - Watcher: the stopped watcher
//   - error: error if the library is not directory-backed or the OS watcher cannot be created
func NewWatcher(library Library, debounce time.Duration) (Watcher, error) {
	if library == nil || library.Dir() == "" {
		return nil, fmt.Errorf("failed to create shader watcher: library has no source directory")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}
	if err := fsw.Add(library.Dir()); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", library.Dir(), err)
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &watcher{
		library:  library,
		fs:       fsw,
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

func (w *watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("shader watcher already started")
	}
	w.started = true
	go w.loop(ctx)
	return nil
}

func (w *watcher) OnChanged() *signal.Signal[string] {
	return &w.changed
}

func (w *watcher) Close() error {
	w.mu.Lock()
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *watcher) loop(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isShaderFile(event.Name) {
				continue
			}
			pending = filepath.Base(event.Name)
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("shader watcher error", "err", err)
		case <-timer.C:
			if err := w.library.Reload(); err != nil {
				logger.Error("failed to reload shaders", "file", pending, "err", err)
				continue
			}
			logger.Info("shaders reloaded", "file", pending, "generation", w.library.Generation())
			w.changed.Emit(pending)
		}
	}
}

func isShaderFile(name string) bool {
	switch filepath.Ext(name) {
	case ".vert", ".frag", ".glsl":
		return true
	}
	return false
}
