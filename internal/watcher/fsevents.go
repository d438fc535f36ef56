package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/applaunch/internal/desktop"
	"github.com/blackwell-systems/applaunch/internal/entry"
)

// Refresher returns desktop entries, rebuilding its cache when stale.
// Rebuild rescans unconditionally: editing a file in place leaves the
// directory mtime untouched, so staleness checks cannot see it.
// cache.Cache implements it.
type Refresher interface {
	DesktopEntries(dirs []string) []entry.Entry
	Rebuild(dirs []string) ([]entry.Entry, error)
}

// Watcher refreshes the entry cache whenever an application directory
// changes.
type Watcher struct {
	cache    Refresher
	dirs     []string
	debounce time.Duration

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu        sync.Mutex
	timer     *time.Timer
	watched   map[string]bool
	refreshes int
	stopped   bool
	// dirty is set when a desktop file changed since the last refresh.
	dirty bool
}

// New creates a Watcher over dirs. debounce is the quiet period after the
// last change before the cache is refreshed.
func New(c Refresher, dirs []string, debounce time.Duration) (*Watcher, error) {
	if c == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		cache:    c,
		dirs:     dirs,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		watched:  make(map[string]bool),
	}, nil
}

// Start warms the cache once and begins watching. Directories that do not
// exist yet are watched through their parent.
func (w *Watcher) Start() error {
	w.refresh()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w.fsw = fsw

	for _, dir := range w.dirs {
		w.watch(dir)
	}

	w.wg.Add(1)
	go w.run()

	return nil
}

// watch adds dir, or its parent when dir is missing.
func (w *Watcher) watch(dir string) {
	target := dir
	if _, err := os.Stat(dir); err != nil {
		target = filepath.Dir(dir)
		if _, err := os.Stat(target); err != nil {
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[target] {
		return
	}
	if err := w.fsw.Add(target); err != nil {
		log.Printf("watcher: cannot watch %s: %v", target, err)
		return
	}
	w.watched[target] = true
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if w.isAppDir(event.Name) {
		if event.Op&fsnotify.Create != 0 {
			w.watch(event.Name)
		}
		w.schedule(false)
		return
	}

	if desktop.IsCandidate(event.Name) && w.isAppDir(filepath.Dir(event.Name)) {
		w.schedule(true)
	}
}

func (w *Watcher) isAppDir(path string) bool {
	for _, dir := range w.dirs {
		if path == dir {
			return true
		}
	}
	return false
}

// schedule (re)arms the debounce timer. fileChanged forces the next
// refresh to rebuild.
func (w *Watcher) schedule(fileChanged bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.dirty = w.dirty || fileChanged
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.refresh)
}

// refresh serves the cache through its staleness check, or rebuilds it when
// a desktop file changed since the last refresh.
func (w *Watcher) refresh() {
	w.mu.Lock()
	rebuild := w.dirty
	w.dirty = false
	w.mu.Unlock()

	var entries []entry.Entry
	if rebuild {
		var err error
		entries, err = w.cache.Rebuild(w.dirs)
		if err != nil {
			log.Printf("watcher: rebuild failed: %v", err)
		}
	} else {
		entries = w.cache.DesktopEntries(w.dirs)
	}

	w.mu.Lock()
	w.refreshes++
	n := w.refreshes
	w.mu.Unlock()

	log.Printf("watcher: cache refreshed (%d entries, refresh #%d)", len(entries), n)
}

// Refreshes returns how many times the cache has been refreshed.
func (w *Watcher) Refreshes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshes
}

// Stop halts the watcher. Pending refreshes are dropped. It is safe to call
// Stop more than once, and before Start.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		close(w.stopCh)
		if w.fsw != nil {
			err = w.fsw.Close()
		}
		w.wg.Wait()
	})
	return err
}
