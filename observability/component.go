package observability

import (
	"context"
	"sync"

	"github.com/kbukum/drivegate/component"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component installs the OTLP providers on Start and flushes them on Stop.
// Register it first so that it stops last.
type Component struct {
	cfg Config

	mu       sync.Mutex
	shutdown Shutdown
}

// NewComponent creates the lifecycle component for cfg.
func NewComponent(cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg}
}

// Name returns "observability".
func (c *Component) Name() string { return "observability" }

// Start installs the providers.
func (c *Component) Start(ctx context.Context) error {
	shutdown, err := Init(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.shutdown = shutdown
	c.mu.Unlock()
	return nil
}

// Stop flushes pending spans and metrics.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	shutdown := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()
	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// Health is always healthy; export failures are reported by the SDK.
func (c *Component) Health(ctx context.Context) component.Health {
	msg := "disabled"
	if c.cfg.Enabled {
		msg = "exporting to " + c.cfg.Endpoint
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: msg}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = "otlp/http " + c.cfg.Endpoint
	}
	return component.Description{Name: "OpenTelemetry", Type: "telemetry", Details: details}
}
