package hotreload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reloadable represents an interface that can be reloaded
type Reloadable interface {
	Reload(ctx context.Context) error
	Name() string
}

// Result describes one debounced reload round
type Result struct {
	Events    []Event
	Reloaded  []string
	Errors    map[string]error
	Completed time.Time
}

// Coordinator debounces watcher events and reloads every registered
// component once per burst
type Coordinator struct {
	watcher      *Watcher
	reloadables  map[string]Reloadable
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	debounceTime time.Duration
	wg           sync.WaitGroup
	isRunning    bool
	onResult     func(context.Context, Result)
	logger       *zap.Logger
}

// NewCoordinator creates a new reload coordinator. onResult, if set, is
// called after every reload round.
func NewCoordinator(watcher *Watcher, logger *zap.Logger, onResult func(context.Context, Result)) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		watcher:      watcher,
		reloadables:  make(map[string]Reloadable),
		ctx:          ctx,
		cancel:       cancel,
		debounceTime: 500 * time.Millisecond,
		onResult:     onResult,
		logger:       logger,
	}
}

// Register adds a reloadable component to the coordinator
func (c *Coordinator) Register(reloadable Reloadable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := reloadable.Name()
	if _, exists := c.reloadables[name]; exists {
		return fmt.Errorf("reloadable %s already registered", name)
	}

	c.reloadables[name] = reloadable
	c.logger.Info("Registered reloadable component", zap.String("name", name))
	return nil
}

// Unregister removes a reloadable component from the coordinator
func (c *Coordinator) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.reloadables, name)
	c.logger.Info("Unregistered reloadable component", zap.String("name", name))
}

// Start begins the hot reload coordination
func (c *Coordinator) Start() error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return fmt.Errorf("coordinator already running")
	}
	c.isRunning = true
	c.mu.Unlock()

	c.watcher.Start()

	c.wg.Add(1)
	go c.coordinateReloads()

	c.logger.Info("Hot reload coordinator started")
	return nil
}

// Stop stops the hot reload coordination and waits for an in-flight
// reload to finish
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.watcher.Stop()

	c.logger.Info("Hot reload coordinator stopped")
}

// coordinateReloads collects events until none arrive for the debounce
// time, then reloads
func (c *Coordinator) coordinateReloads() {
	defer c.wg.Done()

	var (
		debounceTimer *time.Timer
		timerC        <-chan time.Time
		events        []Event
	)

	for {
		select {
		case <-c.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-c.watcher.Events():
			if !ok {
				return
			}
			events = append(events, event)

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(c.getDebounceTime())
				timerC = debounceTimer.C
			} else {
				debounceTimer.Reset(c.getDebounceTime())
			}

		case <-timerC:
			if len(events) > 0 {
				c.triggerReload(append([]Event(nil), events...))
				events = events[:0]
			}
			debounceTimer, timerC = nil, nil
		}
	}
}

// triggerReload reloads all registered components concurrently
func (c *Coordinator) triggerReload(events []Event) {
	c.mu.RLock()
	reloadables := make([]Reloadable, 0, len(c.reloadables))
	for _, r := range c.reloadables {
		reloadables = append(reloadables, r)
	}
	c.mu.RUnlock()

	if len(reloadables) == 0 {
		return
	}

	c.logger.Info("Triggering hot reload", zap.Int("events", len(events)))
	for _, event := range events {
		c.logger.Debug("Reload triggered by",
			zap.String("path", event.Path),
			zap.String("operation", event.Op.String()),
		)
	}

	result := Result{Events: events, Errors: make(map[string]error)}
	var (
		wg  sync.WaitGroup
		rmu sync.Mutex
	)
	for _, reloadable := range reloadables {
		wg.Add(1)
		go func(r Reloadable) {
			defer wg.Done()
			err := r.Reload(c.ctx)

			rmu.Lock()
			defer rmu.Unlock()
			if err != nil {
				result.Errors[r.Name()] = err
				c.logger.Error("Reload error", zap.String("name", r.Name()), zap.Error(err))
				return
			}
			result.Reloaded = append(result.Reloaded, r.Name())
			c.logger.Info("Successfully reloaded component", zap.String("name", r.Name()))
		}(reloadable)
	}
	wg.Wait()
	result.Completed = time.Now()

	if len(result.Errors) > 0 {
		c.logger.Error("Hot reload completed with errors", zap.Int("errors", len(result.Errors)))
	} else {
		c.logger.Info("Hot reload completed successfully")
	}

	if c.onResult != nil {
		c.onResult(c.ctx, result)
	}
}

// SetDebounceTime sets the debounce time for reload events
func (c *Coordinator) SetDebounceTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debounceTime = d
}

func (c *Coordinator) getDebounceTime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.debounceTime
}

// IsRunning returns whether the coordinator is currently running
func (c *Coordinator) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isRunning
}
