// Package watcher detects changes to a declaration file and signals that a
// new reconciliation run is needed.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rudder/pkg/logging"
)

// Watcher watches one declaration file.
//
// The containing directory is watched rather than the file itself: editors
// and config management tools replace files by rename, which would otherwise
// drop the watch. Bursts of events are debounced into a single signal.
type Watcher struct {
	mu sync.Mutex

	path     string
	debounce time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	running bool
}

// New creates a Watcher for the declaration at path.
func New(path string, debounce time.Duration) *Watcher {
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
	}
}

// Start begins watching. Each settled change to the declaration file sends
// one signal on changes. Stop (or context cancellation) ends the watch.
func (w *Watcher) Start(ctx context.Context, changes chan<- struct{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = fsWatcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(ctx, changes)

	logging.Info("Watcher", "Watching %s for declaration changes", w.path)
	return nil
}

// Stop ends the watch.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopCh)
	w.watcher.Close()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.running = false
}

func (w *Watcher) processEvents(ctx context.Context, changes chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleSignal(changes)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher", "Watch error: %v", err)
		}
	}
}

// scheduleSignal resets the debounce timer; the signal fires once the burst
// settles.
func (w *Watcher) scheduleSignal(changes chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case changes <- struct{}{}:
		case <-w.stopCh:
		}
	})
}
