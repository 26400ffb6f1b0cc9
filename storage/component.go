package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
)

const healthProbeKey = ".health"

var errNotStarted = errors.New("storage: component not started")

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component owns the scratch backend for the lifetime of the process.
// Runs obtain their scratch areas through NewScratch.
type Component struct {
	cfg Config
	log *logger.Logger

	mu    sync.RWMutex
	store Storage
}

// NewComponent returns a stopped storage component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

func (c *Component) current() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// Storage returns the backend, nil while stopped.
func (c *Component) Storage() Storage { return c.current() }

// NewScratch allocates the scratch area for one run.
func (c *Component) NewScratch(runID string) (*Scratch, error) {
	s := c.current()
	if s == nil {
		return nil, errNotStarted
	}
	return NewScratchWithID(s, runID, c.log), nil
}

func (c *Component) Name() string { return "storage" }

// Start opens the configured backend. With SweepOnStart set, run
// directories left by an earlier process are removed first.
func (c *Component) Start(ctx context.Context) error {
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	if c.cfg.SweepOnStart {
		Sweep(ctx, s, c.log)
	}

	c.mu.Lock()
	c.store = s
	c.mu.Unlock()
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	c.store = nil
	c.mu.Unlock()
	return nil
}

// IsAvailable is true between Start and Stop.
func (c *Component) IsAvailable(context.Context) bool { return c.current() != nil }

// Health probes the backend with an existence check on a fixed key.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}

	s := c.current()
	switch {
	case s == nil:
		h.Status, h.Message = component.StatusUnhealthy, "storage not initialized"
	default:
		if _, err := s.Exists(ctx, healthProbeKey); err != nil {
			h.Status, h.Message = component.StatusUnhealthy, "probe: "+err.Error()
		}
	}
	return h
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s at %s", c.cfg.Provider, c.cfg.BasePath)
	if c.cfg.SweepOnStart {
		details += " (sweep on start)"
	}
	return component.Description{Name: "Scratch storage", Type: "storage", Details: details}
}
