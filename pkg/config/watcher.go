package config

import (
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file and calls the handler with a freshly
// loaded Config whenever it changes. Changes are debounced so editors that
// write in several steps trigger a single reload.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  func(Config)
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
}

// NewWatcher creates a config file watcher. The handler is invoked from
// the watcher's own goroutine; callers that need loop-confined delivery
// should forward the value into their event loop.
func NewWatcher(path string, handler func(Config)) *Watcher {
	return &Watcher{
		path:     path,
		debounce: time.Second,
		handler:  handler,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching the config file for changes.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	go w.watch()
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) watch() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Write for in-place edits, Create for editors that
			// replace the file.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			}

		case <-timerC:
			timerC = nil
			cfg, err := Load(w.path)
			if err != nil {
				log.Printf("Warning: failed to reload config from %s: %v", w.path, err)
				continue
			}
			log.Printf("Config file %s changed, applying new settings", w.path)
			w.handler(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: config watcher error: %v", err)
		}
	}
}
