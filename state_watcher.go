package main

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher constants
const (
	WatcherDebounce = 300 * time.Millisecond
	WatcherStopWait = 2 * time.Second
)

// stateWatcher reloads a FileStore when its file changes on disk.
type stateWatcher struct {
	store    *FileStore
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	doneChan chan struct{}

	debounceMutex sync.Mutex
	debounceTimer *time.Timer
}

// Watch starts monitoring the store file for external edits. The directory is
// watched rather than the file because saves replace it by rename.
func (s *FileStore) Watch() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch state directory %s: %w", dir, err)
	}

	sw := &stateWatcher{
		store:    s,
		watcher:  watcher,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	s.watcher = sw
	go sw.run()

	s.log.Debug().Str("dir", dir).Msg("state file watcher started")
	return nil
}

func (sw *stateWatcher) run() {
	defer func() {
		if r := recover(); r != nil {
			sw.store.log.Error().Interface("panic", r).Msg("state watcher panic recovered")
		}
		sw.watcher.Close()
		close(sw.doneChan)
	}()

	name := filepath.Base(sw.store.path)
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				sw.scheduleReload()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.store.log.Warn().Err(err).Msg("state watcher error")

		case <-sw.stopChan:
			return
		}
	}
}

// scheduleReload coalesces bursts of events from editors that write in steps.
func (sw *stateWatcher) scheduleReload() {
	sw.debounceMutex.Lock()
	defer sw.debounceMutex.Unlock()

	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(WatcherDebounce, sw.store.reload)
}

// Stop stops the watcher and waits for its goroutine to exit.
func (sw *stateWatcher) Stop() {
	sw.debounceMutex.Lock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
		sw.debounceTimer = nil
	}
	sw.debounceMutex.Unlock()

	close(sw.stopChan)

	select {
	case <-sw.doneChan:
	case <-time.After(WatcherStopWait):
		sw.store.log.Warn().Msg("state watcher goroutine did not exit in time")
	}
}
