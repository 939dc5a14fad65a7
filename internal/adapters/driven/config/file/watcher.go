package file

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/eventqueue"
	"github.com/lumen-labs/engagekit/internal/logger"
)

// Watcher reloads settings when the config file changes and publishes
// a domain.ConfigChangedEvent for each successful reload.
type Watcher struct {
	store   *SettingsStore
	queue   *eventqueue.Queue
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching the settings file's directory. Watching
// the directory rather than the file survives editors that replace the
// file on save.
func NewWatcher(store *SettingsStore, queue *eventqueue.Queue) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := fsWatcher.Add(filepath.Dir(store.Path())); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	w := &Watcher{
		store:   store,
		queue:   queue,
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}
	go w.loop()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.store.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	settings, err := w.store.Load()
	if err != nil {
		logger.Warn("reloading settings after change: %v", err)
		return
	}

	logger.Debug("settings file changed, reloaded")
	if err := w.queue.Publish(domain.ConfigChangedEvent{Settings: settings}); err != nil {
		logger.Warn("publishing config change: %v", err)
	}
}
