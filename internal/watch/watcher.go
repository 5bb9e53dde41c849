// Package watch reports external edits of the data files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher coalesces file events into batches delivered on Changes.
// The parent directories are watched so that editors which replace a file
// by rename are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
	changes  chan []string
}

// New watches paths. Nothing is delivered until Run is called.
func New(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		debounce: debounce,
		logger:   logger,
		changes:  make(chan []string),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", zap.String("dir", dir))
	}
	return w, nil
}

// Changes delivers the sorted set of files touched during each quiet
// period. It is closed when Run returns.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)
	defer w.fs.Close()

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.files[name] {
				continue
			}
			w.logger.Debug("file changed",
				zap.String("file", name),
				zap.String("operation", event.Op.String()),
			)
			pending[name] = true

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for name := range pending {
				batch = append(batch, name)
			}
			sort.Strings(batch)
			pending = make(map[string]bool)

			select {
			case w.changes <- batch:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}
