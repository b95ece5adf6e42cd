package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeFunc is called after a watcher pass that added, updated or
// removed at least one file.
type ChangeFunc func(changed []string, removed []string)

type Watcher struct {
	workspace    *Workspace
	stopCh       chan struct{}
	stopOnce     sync.Once
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     ChangeFunc
}

type WatcherOption func(*Watcher)

// WithInterval sets the poll interval. Non-positive durations are ignored.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithChangeFunc(fn ChangeFunc) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

func NewWatcher(ws *Workspace, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		workspace:    ws,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Poll()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll rescans files whose modification time moved forward and drops
// files that disappeared. It reports whether anything changed.
func (w *Watcher) Poll() bool {
	current := make(map[string]bool)
	var changed, removed []string

	filepath.Walk(w.workspace.RootDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.workspace.RootDir() && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(path) {
			return nil
		}

		current[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if err := w.workspace.ScanFile(path); err != nil {
				log.Warningf("%s: %s", path, err)
				return nil
			}
			changed = append(changed, path)
		}
		return nil
	})

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.workspace.RemoveFile(path)
			removed = append(removed, path)
		}
	}

	if len(changed) == 0 && len(removed) == 0 {
		return false
	}
	log.Infof("%d file(s) changed, %d removed", len(changed), len(removed))
	if w.onChange != nil {
		w.onChange(changed, removed)
	}
	return true
}
