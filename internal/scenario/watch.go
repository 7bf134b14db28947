package scenario

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long a file must stay quiet before its change is
// reported. Every new event for the file restarts the wait.
const Debounce = 100 * time.Millisecond

// Watcher reports scenario and graph snapshot files that change on disk.
// Events and Errors are closed once the watcher stops.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the given directories
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and waits for its goroutine to exit
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// pendingFile is a change waiting for its file to go quiet
type pendingFile struct {
	timer *time.Timer
	last  time.Time
}

func (w *Watcher) run() {
	pending := make(map[string]*pendingFile)
	ready := make(chan string)
	defer func() {
		for _, p := range pending {
			p.timer.Stop()
		}
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !IsDataFile(event.Name) {
				continue
			}
			if p, ok := pending[event.Name]; ok {
				p.last = time.Now()
				continue
			}
			pending[event.Name] = &pendingFile{
				timer: w.notifyAfter(event.Name, Debounce, ready),
				last:  time.Now(),
			}
		case name := <-ready:
			p, ok := pending[name]
			if !ok {
				continue
			}
			// Written again since the timer was armed
			if wait := Debounce - time.Since(p.last); wait > 0 {
				p.timer = w.notifyAfter(name, wait, ready)
				continue
			}
			delete(pending, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// notifyAfter sends name on ready once d has passed, unless the watcher
// closes first
func (w *Watcher) notifyAfter(name string, d time.Duration, ready chan<- string) *time.Timer {
	return time.AfterFunc(d, func() {
		select {
		case ready <- name:
		case <-w.closeCh:
		}
	})
}

// IsDataFile reports whether path looks like a scenario or graph snapshot
func IsDataFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
