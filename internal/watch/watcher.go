// Package watch reports files leaving the triaged folder.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cull/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Event reports a file that was removed from, or renamed out of, a watched
// directory
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher monitors directories for files disappearing using fsnotify
type Watcher struct {
	// Directories being watched
	directories []string

	// Channel delivering events; closed when the event loop exits
	events chan Event

	// stopChan asks the loop to exit; doneChan is closed once it has
	stopChan chan struct{}
	doneChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Optional name filter; nil accepts every file
	filter func(name string) bool

	mutex   sync.RWMutex
	running bool
	closed  bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		events:    make(chan Event, 16),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// SetFilter restricts events to base names accepted by match. Must be
// called before Start.
func (w *Watcher) SetFilter(match func(name string) bool) {
	w.filter = match
}

// AddDirectory adds a directory to watch using fsnotify
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	w.directories = append(w.directories, dir)
	w.mutex.Unlock()
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Events returns the channel that delivers removal events
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins the file watching process. A watcher can be started once.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return fmt.Errorf("watcher already stopped")
	}
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.running = true

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.doneChan)
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if w.filter != nil && !w.filter(filepath.Base(event.Name)) {
				continue
			}

			ev := Event{Path: event.Name, Op: event.Op, Timestamp: time.Now()}

			// Send event non-blockingly to avoid goroutine getting stuck if channel full
			select {
			case w.events <- ev:
			default:
				log.LogWithFields(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// Stop halts the watcher and waits for the event loop to exit. The Events
// channel is closed afterwards if the watcher was started.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return
	}
	if w.running {
		close(w.stopChan)
		<-w.doneChan
		w.running = false
	}

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	w.closed = true
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
