package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a watched file must stay quiet before its
// change callbacks run.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to configuration files.
//
// fsnotify watches the parent directory so files replaced by rename are
// still seen; events for other files in that directory are dropped.
// Bursts of events for one file collapse into a single callback.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu        sync.Mutex
	files     map[string]*time.Timer
	callbacks []func(string)

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce sets the quiet period before callbacks run. Zero runs them
// on every event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher. Call Watch for each file, then Start.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		files:    make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path to the watched set.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	if _, ok := w.files[path]; !ok {
		w.files[path] = nil
	}
	w.mu.Unlock()

	w.logger.Debug("watching configuration file", "path", path)
	return nil
}

// OnChange registers fn to run with the cleaned path of a changed file.
// Callbacks run on their own goroutine, not the event loop.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Start processes events until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.schedule(filepath.Clean(ev.Name))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync runs Start in a new goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends the event loop, cancels pending callbacks and releases the
// fsnotify watcher. Calls after the first return nil.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for path, t := range w.files {
			if t != nil {
				t.Stop()
				w.files[path] = nil
			}
		}
		w.mu.Unlock()

		err = w.fsw.Close()
	})
	return err
}

// schedule arms or re-arms the callback timer for a watched path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, watched := w.files[path]
	if !watched {
		return
	}
	select {
	case <-w.done:
		return
	default:
	}

	if w.debounce <= 0 {
		go w.fire(path)
		return
	}
	if t != nil {
		t.Reset(w.debounce)
		return
	}
	w.files[path] = time.AfterFunc(w.debounce, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	callbacks := w.callbacks
	w.mu.Unlock()

	w.logger.Debug("configuration file changed", "path", path)
	for _, fn := range callbacks {
		fn(path)
	}
}
