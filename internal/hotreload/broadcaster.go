package hotreload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Listener is notified after every reload round
type Listener func(ctx context.Context, result Result) error

// Broadcaster fans reload results out to named listeners
type Broadcaster struct {
	listeners map[string]Listener
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewBroadcaster creates a new result broadcaster
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		listeners: make(map[string]Listener),
		logger:    logger,
	}
}

// AddListener adds a listener with a unique name
func (b *Broadcaster) AddListener(name string, listener Listener) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.listeners[name]; exists {
		return fmt.Errorf("listener %s already exists", name)
	}

	b.listeners[name] = listener
	b.logger.Debug("Added reload listener", zap.String("name", name))
	return nil
}

// RemoveListener removes a listener by name
func (b *Broadcaster) RemoveListener(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.listeners, name)
	b.logger.Debug("Removed reload listener", zap.String("name", name))
}

// Broadcast calls every listener concurrently and joins their errors
func (b *Broadcaster) Broadcast(ctx context.Context, result Result) error {
	b.mu.RLock()
	listeners := make(map[string]Listener, len(b.listeners))
	for name, listener := range b.listeners {
		listeners[name] = listener
	}
	b.mu.RUnlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, listener := range listeners {
		wg.Add(1)
		go func(n string, l Listener) {
			defer wg.Done()
			if err := l(ctx, result); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("listener %s failed: %w", n, err))
				mu.Unlock()
			}
		}(name, listener)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Close removes all listeners
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = make(map[string]Listener)
	b.logger.Debug("Reload broadcaster closed")
}

// ListenerCount returns the number of registered listeners
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// HasListener checks if a listener with the given name exists
func (b *Broadcaster) HasListener(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.listeners[name]
	return exists
}
