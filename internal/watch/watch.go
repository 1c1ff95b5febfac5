// Package watch reports edits to model files and scripts so the viewer can
// reload them without a restart.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches directories and delivers changed file paths, coalescing
// bursts of events for the same file. Editors typically write a file
// through several events; only one path is delivered per burst.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	changes  chan string
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

func New(debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		changes:  make(chan string, 64),
		log:      log,
		pending:  make(map[string]time.Time),
	}, nil
}

// Add starts watching dir. Files inside it are reported, subdirectories
// are not.
func (w *Watcher) Add(dir string) error {
	return w.fw.Add(dir)
}

// Changes delivers cleaned paths of changed files.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Run pumps events until ctx is cancelled. It closes the watcher on exit.
func (w *Watcher) Run(ctx context.Context) {
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()
	defer w.fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[filepath.Clean(ev.Name)] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watch error", zap.Error(err))
		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, at := range w.pending {
		if now.Sub(at) < w.debounce {
			continue
		}
		select {
		case w.changes <- path:
			delete(w.pending, path)
		default:
			w.log.Warn("file watch queue full, retrying", zap.String("path", path))
			return
		}
	}
}
