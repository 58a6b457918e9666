package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// FolderWatcher reports changes to files in the settings folder, debounced
// so an editor's save sequence (truncate, write, rename) yields one event.
type FolderWatcher struct {
	fsWatcher *fsnotify.Watcher
	events    chan string
	stop      chan struct{}
	mu        sync.Mutex
	stopped   bool
	delay     time.Duration
}

// NewFolderWatcher starts watching dir.
func NewFolderWatcher(dir string) (*FolderWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(ExpandPath(dir)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &FolderWatcher{
		fsWatcher: fsWatcher,
		events:    make(chan string, 1),
		stop:      make(chan struct{}),
		delay:     200 * time.Millisecond,
	}
	go w.run()
	return w, nil
}

// Events delivers the base name of the last changed file after each burst.
func (w *FolderWatcher) Events() <-chan string {
	return w.events
}

// Stop stops the watcher.
func (w *FolderWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true

	close(w.stop)
	w.fsWatcher.Close()
}

func (w *FolderWatcher) run() {
	var debounceTimer *time.Timer
	var last string
	var lastMu sync.Mutex

	for {
		select {
		case <-w.stop:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			lastMu.Lock()
			last = filepath.Base(event.Name)
			lastMu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.delay, func() {
				lastMu.Lock()
				name := last
				lastMu.Unlock()
				select {
				case w.events <- name:
				default:
				}
			})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("settings folder watcher error")
		}
	}
}
