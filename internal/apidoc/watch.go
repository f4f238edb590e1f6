package apidoc

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle absorbs the burst of events editors emit for a single save.
const settle = 150 * time.Millisecond

// Watcher reports changes to one document file. The parent directory is
// watched so editors that save by rename are still seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return &Watcher{path: abs, watcher: w}, nil
}

// Wait blocks until the document changes, the context ends, or the watcher
// is closed.
func (w *Watcher) Wait(ctx context.Context) error {
	changed := false
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				changed = true
				timer = time.After(settle)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watch %s: %w", w.path, err)

		case <-timer:
			if changed {
				return nil
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
