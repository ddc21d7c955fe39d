// Package hotreload watches files and reloads the components that depend
// on them after a burst of changes settles.
package hotreload

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager manages the entire hot reload system
type Manager struct {
	watcher     *Watcher
	coordinator *Coordinator
	broadcaster *Broadcaster
	logger      *zap.Logger
	mu          sync.Mutex
	started     bool
}

// NewManager creates a new hot reload manager
func NewManager(logger *zap.Logger) (*Manager, error) {
	watcher, err := NewWatcher(logger)
	if err != nil {
		return nil, err
	}

	broadcaster := NewBroadcaster(logger)
	coordinator := NewCoordinator(watcher, logger, func(ctx context.Context, result Result) {
		if err := broadcaster.Broadcast(ctx, result); err != nil {
			logger.Warn("Reload listeners failed", zap.Error(err))
		}
	})

	return &Manager{
		watcher:     watcher,
		coordinator: coordinator,
		broadcaster: broadcaster,
		logger:      logger,
	}, nil
}

// AddWatch adds a file to watch
func (m *Manager) AddWatch(path string) error {
	return m.watcher.Add(path)
}

// RemoveWatch removes a file from watch
func (m *Manager) RemoveWatch(path string) error {
	return m.watcher.Remove(path)
}

// RegisterReloadable registers a reloadable component
func (m *Manager) RegisterReloadable(reloadable Reloadable) error {
	return m.coordinator.Register(reloadable)
}

// AddListener adds a listener called after every reload round
func (m *Manager) AddListener(name string, listener Listener) error {
	return m.broadcaster.AddListener(name, listener)
}

// RemoveListener removes a listener
func (m *Manager) RemoveListener(name string) {
	m.broadcaster.RemoveListener(name)
}

// Start starts the hot reload system
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}

	if err := m.coordinator.Start(); err != nil {
		return err
	}

	m.started = true
	m.logger.Info("Hot reload system started", zap.Strings("paths", m.watcher.Paths()))
	return nil
}

// Stop stops the hot reload system
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		m.watcher.Stop()
		return
	}

	m.coordinator.Stop()
	m.broadcaster.Close()
	m.started = false
	m.logger.Info("Hot reload system stopped")
}

// SetDebounceTime sets the debounce time for reload events
func (m *Manager) SetDebounceTime(d time.Duration) {
	m.coordinator.SetDebounceTime(d)
}

// IsRunning returns whether the hot reload system is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Shutdown stops the system, giving up when ctx is done first
func (m *Manager) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
