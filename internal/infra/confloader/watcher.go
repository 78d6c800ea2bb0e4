package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to configuration files.
//
// The parent directory is watched so editors that save by rename are
// still seen; events for other files in that directory are dropped.
type Watcher struct {
	watcher   *fsnotify.Watcher
	callbacks []func(string)
	files     map[string]struct{}
	mu        sync.RWMutex
	done      chan struct{}
	stopOnce  sync.Once
	logger    *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a new configuration file watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		files:   make(map[string]struct{}),
		done:    make(chan struct{}),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch starts reporting changes to path.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error("failed to watch directory", "path", dir, "error", err)
		return err
	}

	w.mu.Lock()
	w.files[abs] = struct{}{}
	w.mu.Unlock()

	w.logger.Debug("watching configuration file", "path", abs)
	return nil
}

// OnChange registers a callback invoked with the path of a changed file.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start processes events until Stop is called.
func (w *Watcher) Start() {
	w.logger.Debug("configuration watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			w.logger.Debug("configuration file changed",
				"file", event.Name,
				"op", event.Op.String(),
			)
			w.notifyCallbacks(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("configuration watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops the watcher. Repeated calls return nil.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		if err != nil {
			w.logger.Error("failed to close watcher", "error", err)
		}
	})
	return err
}

func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[abs]
	return ok
}

func (w *Watcher) notifyCallbacks(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}
