package hotreload

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher handles file system watching for hot reload. Files are watched
// through their parent directory so that editors which save by renaming a
// temporary file over the original keep triggering events.
type Watcher struct {
	watcher    *fsnotify.Watcher
	files      map[string]bool
	dirs       map[string]int
	events     chan Event
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	isWatching bool
	logger     *zap.Logger
}

// Event represents a file system event
type Event struct {
	Path string
	Op   fsnotify.Op
}

// NewWatcher creates a new file watcher
func NewWatcher(logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		watcher: fsWatcher,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		events:  make(chan Event, 100),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// Add starts watching a file
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to add path %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true

	w.logger.Debug("Added watch path", zap.String("path", absPath))
	return nil
}

// Remove stops watching a file
func (w *Watcher) Remove(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if !w.files[absPath] {
		return fmt.Errorf("path %s is not watched", absPath)
	}

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if err := w.watcher.Remove(dir); err != nil {
			return fmt.Errorf("failed to remove path %s: %w", dir, err)
		}
	}
	delete(w.files, absPath)

	w.logger.Debug("Removed watch path", zap.String("path", absPath))
	return nil
}

// Paths returns the watched files
func (w *Watcher) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	return paths
}

// Events returns the channel for file system events
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins watching for file system events
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.isWatching {
		w.mu.Unlock()
		return
	}
	w.isWatching = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.watch()
	w.logger.Info("File watcher started")
}

// Stop stops watching for file system events and closes the underlying
// watcher. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasWatching := w.isWatching
	w.isWatching = false
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Failed to close file watcher", zap.Error(err))
	}
	if wasWatching {
		close(w.events)
		w.logger.Info("File watcher stopped")
	}
}

// watch is the main event loop for the watcher
func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isWatchedFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}

			w.logger.Debug("File system event",
				zap.String("path", event.Name),
				zap.String("operation", event.Op.String()),
			)

			select {
			case w.events <- Event{Path: event.Name, Op: event.Op}:
			case <-w.ctx.Done():
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

// isWatchedFile filters directory events down to the files added
func (w *Watcher) isWatchedFile(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[absPath]
}

// IsWatching returns whether the watcher is currently active
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isWatching
}
