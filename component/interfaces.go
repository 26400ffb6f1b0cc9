package component

import "context"

// HealthStatus is a component's self-reported state.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's answer to a health probe.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a piece of infrastructure with a start/stop lifecycle:
// scratch storage, the speech model, the Telegram bot, the HTTP server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. ctx carries the shutdown deadline.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what a component shows in the startup summary.
type Description struct {
	// Name is the display name; the component's Name is used when empty.
	Name string
	// Type groups components, e.g. "storage", "model", "bot", "server".
	Type    string
	Details string
	Port    int
}

// Describable components appear in the infrastructure section of the
// startup summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route listed in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by components that serve HTTP.
type RouteProvider interface {
	Routes() []Route
}
