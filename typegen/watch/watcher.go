// Package watch reruns generation when the schema document changes.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// Callback is invoked after the watched file settles. Errors are logged and
// watching continues.
type Callback func(path string) error

// Watcher watches one schema document and triggers a debounced callback
type Watcher struct {
	path           string
	watcher        *fsnotify.Watcher
	callback       Callback
	log            *zap.SugaredLogger
	mu             sync.Mutex
	runMu          sync.Mutex // serializes callbacks
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	runs           int
}

// New creates a watcher for path. The parent directory is watched so that
// editors replacing the file through a rename are still observed.
func New(path string, debounce time.Duration, callback Callback) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch directory of %s", abs)
	}

	return &Watcher{
		path:           abs,
		watcher:        watcher,
		callback:       callback,
		log:            logger.ComponentLogger("watch"),
		debouncePeriod: debounce,
	}, nil
}

// Run blocks until ctx is cancelled or the underlying watcher closes
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Infow("Watching schema document", logger.FieldFile, w.path)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				logger.FieldEvent, event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// relevant reports whether event touches the watched file's content
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create
}

// schedule debounces rapid file changes into one callback
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.fire)
}

func (w *Watcher) fire() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	start := time.Now()
	if err := w.callback(w.path); err != nil {
		w.log.Errorw("Regeneration failed",
			logger.FieldFile, w.path,
			logger.FieldError, err)
		return
	}
	w.log.Infow("Regenerated",
		logger.FieldFile, w.path,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

// Runs returns how many times the callback has fired
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}
