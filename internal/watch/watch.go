// Package watch notifies the server when the local timeline data file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/narvanalabs/timeline/pkg/logger"
)

// DefaultDebounce batches the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher observes a single file. The containing directory is watched so
// that editors which replace the file by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *logger.Logger
}

// New creates a watcher for path. onChange runs on the watcher goroutine
// once per debounced burst of writes.
func New(path string, debounce time.Duration, onChange func(), log *logger.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   log.WithComponent("watch"),
	}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching data file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("data file event", "op", event.Op.String(), "path", event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			w.logger.Info("data file changed", "path", w.path)
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}
