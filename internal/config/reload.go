package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// reloadDebounce is how long the reloader waits after the last write.
const reloadDebounce = 500 * time.Millisecond

// Reloadable is anything that can re-read its backing file.
type Reloadable interface {
	Reload() error
}

// Reloader watches a file and calls Reload on its target after changes.
// It watches the parent directory, so a file created after startup or
// replaced by rename is picked up like an in-place write.
type Reloader struct {
	watcher *fsnotify.Watcher
	target  Reloadable
	logger  logr.Logger
	path    string
}

// NewReloader creates a file watcher for path. When the parent directory of
// path does not exist nothing is watched; Run then only waits for ctx.
func NewReloader(target Reloadable, path string, logger logr.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := ""
	if path != "" {
		path = filepath.Clean(path)
		dir := filepath.Dir(path)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := watcher.Add(dir); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
			}
			watched = path
		}
	}

	return &Reloader{
		watcher: watcher,
		target:  target,
		logger:  logger,
		path:    watched,
	}, nil
}

// Path returns the watched path, or "" if nothing is watched.
func (r *Reloader) Path() string {
	return r.path
}

// relevant reports whether event touches the watched file. Removal counts:
// the target then reloads an empty key set.
func (r *Reloader) relevant(event fsnotify.Event) bool {
	if r.path == "" || filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

// Run watches for file changes and reloads the target. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if r.relevant(event) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					if err := r.target.Reload(); err != nil {
						r.logger.Error(err, "hot-reload failed", "path", r.path)
					} else {
						r.logger.Info("hot-reload: keys reloaded", "path", r.path)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error(err, "file watcher error", "path", r.path)
		}
	}
}
