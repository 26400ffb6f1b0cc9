package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voicescribe/logger"
)

// DefaultStopTimeout bounds how long a single component may take to stop
// when the caller's context allows more.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	c       Component
	started bool
}

// Registry starts components in registration order and stops them in
// reverse, so a component may rely on everything registered before it.
type Registry struct {
	mu          sync.RWMutex
	entries     []*entry
	byName      map[string]*entry
	log         *logger.Logger
	stopTimeout time.Duration
}

// NewRegistry returns an empty registry logging through log.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		byName:      make(map[string]*entry),
		log:         log.WithComponent("components"),
		stopTimeout: DefaultStopTimeout,
	}
}

// SetStopTimeout changes the per-component stop bound.
func (r *Registry) SetStopTimeout(d time.Duration) {
	r.mu.Lock()
	r.stopTimeout = d
	r.mu.Unlock()
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %q already registered", name)
	}
	e := &entry{c: c}
	r.entries = append(r.entries, e)
	r.byName[name] = e
	return nil
}

// StartAll starts every component in order. When one fails, the ones
// already started are stopped again before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		name := e.c.Name()
		start := time.Now()
		if err := e.c.Start(ctx); err != nil {
			r.log.Error("component failed to start", logger.MergeWithError(map[string]interface{}{
				logger.FieldOperation: name,
			}, err))
			if rbErr := r.stopStarted(context.Background()); rbErr != nil {
				r.log.Warn("rollback after failed start incomplete", logger.MergeWithError(nil, rbErr))
			}
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.DurationFields(name, time.Since(start)))
	}
	return nil
}

// StopAll stops started components in reverse order. Every component is
// attempted; the errors are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.c.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := e.c.Stop(stopCtx)
		cancel()
		e.started = false

		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			r.log.Error("component failed to stop", logger.MergeWithError(map[string]interface{}{
				logger.FieldOperation: name,
			}, err))
			continue
		}
		r.log.Debug("component stopped", map[string]interface{}{logger.FieldOperation: name})
	}
	return errors.Join(errs...)
}

// HealthAll collects every component's health in registration order. An
// empty Name is filled with the component's name.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		h := e.c.Health(ctx)
		if h.Name == "" {
			h.Name = e.c.Name()
		}
		out = append(out, h)
	}
	return out
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byName[name]; ok {
		return e.c
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.c
	}
	return out
}

// Overall folds health results into one status. Unhealthy beats
// degraded, which beats healthy.
func Overall(results []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range results {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
