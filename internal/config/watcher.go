package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadHandler is called with the changed file's base name after the
// debounce window.
type ReloadHandler func(file string)

// Watcher watches a config directory and fires handlers on changes.
// Editors and container mounts produce bursts of events, so changes are
// debounced per file.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.Mutex
	handlers map[string][]ReloadHandler
	pending  map[string]*time.Timer
}

// NewWatcher creates a watcher for dir. Call Start to begin delivering
// events.
func NewWatcher(dir string, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		watcher:  fsw,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		handlers: make(map[string][]ReloadHandler),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// OnChange registers a handler for one file name (base name, e.g.
// "columns.yaml"). The empty string subscribes to every file.
func (w *Watcher) OnChange(file string, h ReloadHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[file] = append(w.handlers[file], h)
}

// Start consumes events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer w.watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.schedule(filepath.Base(ev.Name))
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Config watcher error", zap.Error(err))
			}
		}
	}()
}

func (w *Watcher) schedule(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[file]; ok {
		t.Stop()
	}
	w.pending[file] = time.AfterFunc(w.debounce, func() {
		w.fire(file)
	})
}

func (w *Watcher) fire(file string) {
	w.mu.Lock()
	delete(w.pending, file)
	hs := append([]ReloadHandler{}, w.handlers[file]...)
	hs = append(hs, w.handlers[""]...)
	w.mu.Unlock()

	w.logger.Info("Config file changed", zap.String("file", file))
	for _, h := range hs {
		h(file)
	}
}
