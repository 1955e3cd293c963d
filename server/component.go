package server

import (
	"context"

	"github.com/kbukum/drivegate/component"
)

// ServerComponent runs a Server under the component registry.
type ServerComponent struct {
	*Server
}

var (
	_ component.Component   = ServerComponent{}
	_ component.Describable = ServerComponent{}
)

// NewComponent wraps s. Start and Stop are promoted from Server.
func NewComponent(s *Server) ServerComponent {
	return ServerComponent{Server: s}
}

func (ServerComponent) Name() string { return "http-server" }

// Health is healthy while the listener is bound.
func (sc ServerComponent) Health(context.Context) component.Health {
	h := component.Health{Name: sc.Name(), Status: component.StatusHealthy}
	if !sc.running() {
		h.Status = component.StatusUnhealthy
		h.Message = "HTTP server not listening"
	}
	return h
}

func (sc ServerComponent) Describe() component.Description {
	cfg := sc.cfg
	details := sc.srv.Addr + " h2c"
	if cfg.WriteTimeout == 0 {
		details += " write_timeout=off"
	}
	return component.Description{Name: "HTTP Server", Type: "server", Details: details, Port: cfg.Port}
}
