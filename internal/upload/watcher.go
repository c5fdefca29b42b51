package upload

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultSettle = 500 * time.Millisecond

// Watcher turns PDF files dropped into a directory into upload paths.
// Files that arrive within one Settle window form a single drop, and only
// the first of them by name is reported.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	// Settle is how long the folder has to stay quiet before a drop is reported.
	Settle time.Duration

	mu         sync.Mutex
	batch      map[string]struct{}
	timer      *time.Timer
	generation int
}

func NewWatcher(logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher: w,
		logger:  logger,
		Settle:  defaultSettle,
		batch:   make(map[string]struct{}),
	}, nil
}

// Watch reports the first PDF of every drop into dir once writes have settled.
// The channel is closed when ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	paths := make(chan string, 10)
	settled := make(chan string, 10)

	go func() {
		defer close(paths)
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-settled:
				select {
				case paths <- path:
				case <-ctx.Done():
					return
				}
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !hasExtension(event.Name) {
					continue
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
					w.schedule(ctx, filepath.Clean(event.Name), settled)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watching drop folder", zap.String("dir", dir), zap.Error(err))
			}
		}
	}()

	w.logger.Info("watching drop folder for resumes", zap.String("dir", dir))

	return paths, nil
}

func (w *Watcher) schedule(ctx context.Context, path string, settled chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.generation++
	generation := w.generation
	w.timer = time.AfterFunc(w.Settle, func() {
		w.flush(ctx, generation, settled)
	})
}

// flush reports the drop collected so far unless a newer event re-armed the timer.
func (w *Watcher) flush(ctx context.Context, generation int, settled chan<- string) {
	w.mu.Lock()
	if generation != w.generation || len(w.batch) == 0 {
		w.mu.Unlock()
		return
	}

	paths := make([]string, 0, len(w.batch))
	for path := range w.batch {
		paths = append(paths, path)
	}
	w.batch = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(paths)
	if len(paths) > 1 {
		w.logger.Debug("ignoring extra files of a drop",
			zap.String("used", paths[0]),
			zap.Strings("ignored", paths[1:]),
		)
	}

	select {
	case settled <- paths[0]:
	case <-ctx.Done():
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.generation++
	w.batch = make(map[string]struct{})
	w.mu.Unlock()

	return w.watcher.Close()
}
