package server

import (
	"context"
	"strconv"

	"github.com/kbukum/voicescribe/component"
)

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component registers a Server with the component registry so the probe
// endpoints start after, and stop before, the pipeline dependencies.
type Component struct {
	*Server
}

// NewComponent adapts s to the registry lifecycle.
func NewComponent(s *Server) *Component { return &Component{Server: s} }

func (c *Component) Name() string { return "http-server" }

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.serving() {
		h.Status, h.Message = component.StatusUnhealthy, "listener closed"
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Probe server",
		Type:    "server",
		Details: c.config.Host + ":" + strconv.Itoa(c.config.Port),
		Port:    c.config.Port,
	}
}

// Routes lists the Gin routes for the startup summary.
func (c *Component) Routes() []component.Route {
	var out []component.Route
	for _, r := range c.engine.Routes() {
		out = append(out, component.Route{Method: r.Method, Path: r.Path, Handler: r.Handler})
	}
	return out
}
