package theme

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports themes saved by any process sharing the store.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan Theme
	done    chan struct{}
}

// Watch starts following the store file. The parent directory is watched
// because Save replaces the file.
func (s *Store) Watch(logger *zap.Logger) (*Watcher, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{watcher: fw, changes: make(chan Theme, 1), done: make(chan struct{})}
	target := filepath.Clean(s.path)
	go func() {
		defer close(w.changes)
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				t, ok, err := s.Load()
				if err != nil {
					logger.Warn("failed to reload theme", zap.Error(err))
					continue
				}
				if !ok {
					continue
				}
				select {
				case w.changes <- t:
				case <-w.done:
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("theme watcher error", zap.Error(err))
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

// Changes delivers every theme written to the store. It is closed by Close.
func (w *Watcher) Changes() <-chan Theme {
	return w.changes
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
