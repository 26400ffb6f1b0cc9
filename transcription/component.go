package transcription

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/provider"
)

// ModelComponent loads a speech model from a registry on Start and frees it
// on Stop. It is itself a Model, so a Recognizer can be built before the
// model is loaded.
type ModelComponent struct {
	registry *provider.Registry[Model]
	provider string
	options  map[string]any
	log      *logger.Logger

	mu    sync.RWMutex
	model Model
}

var (
	_ component.Component = (*ModelComponent)(nil)
	_ Model               = (*ModelComponent)(nil)
)

// NewModelComponent creates a component for the named model provider.
func NewModelComponent(registry *provider.Registry[Model], name string, options map[string]any, log *logger.Logger) *ModelComponent {
	return &ModelComponent{
		registry: registry,
		provider: name,
		options:  options,
		log:      log.WithComponent("model"),
	}
}

// Name returns the component name.
func (c *ModelComponent) Name() string { return "model" }

// Start loads the model. Loading is slow and happens once per process.
func (c *ModelComponent) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		return nil
	}

	m, err := c.registry.Create(c.provider, c.options)
	if err != nil {
		return fmt.Errorf("model %s: %w", c.provider, err)
	}
	c.registry.Set(c.provider, m)
	c.model = m

	c.log.Info("speech model loaded", map[string]interface{}{
		"provider": c.provider,
	})
	return nil
}

// Stop frees the model.
func (c *ModelComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = nil
	return c.registry.CloseAll(ctx)
}

// Health reports whether the model is loaded.
func (c *ModelComponent) Health(ctx context.Context) component.Health {
	if !c.IsAvailable(ctx) {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "model not loaded"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *ModelComponent) Describe() component.Description {
	details := "provider=" + c.provider
	if p, ok := c.options["model_path"].(string); ok && p != "" {
		details += " path=" + p
	}
	return component.Description{Name: "Speech Model", Type: "model", Details: details}
}

// Model returns the loaded model, or nil before Start.
func (c *ModelComponent) Model() Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// IsAvailable reports whether a usable model is loaded.
func (c *ModelComponent) IsAvailable(ctx context.Context) bool {
	m := c.Model()
	return m != nil && m.IsAvailable(ctx)
}

// NewDecoder delegates to the loaded model.
func (c *ModelComponent) NewDecoder(sampleRate float64) (Decoder, error) {
	m := c.Model()
	if m == nil {
		return nil, fmt.Errorf("model %s: not loaded", c.provider)
	}
	return m.NewDecoder(sampleRate)
}
