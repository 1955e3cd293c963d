package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/drivegate/component"
)

// pruneInterval is how often idle login buckets are dropped.
const pruneInterval = 5 * time.Minute

var (
	_ component.Component   = (*limiterComponent)(nil)
	_ component.Describable = (*limiterComponent)(nil)
)

// limiterComponent runs the login limiter's pruner for the lifetime of the
// application.
type limiterComponent struct {
	g *Gateway

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Component returns the lifecycle component that maintains the login rate
// limiter.
func (g *Gateway) Component() component.Component {
	return &limiterComponent{g: g}
}

func (c *limiterComponent) Name() string { return "login-limiter" }

func (c *limiterComponent) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.g.RunLimiterPruner(runCtx, pruneInterval)
	}()
	return nil
}

func (c *limiterComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *limiterComponent) Health(ctx context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d tracked clients", c.g.loginLimiter.Len()),
	}
}

func (c *limiterComponent) Describe() component.Description {
	cfg := c.g.cfg.Auth
	return component.Description{
		Name:    "Login rate limit",
		Type:    "limiter",
		Details: fmt.Sprintf("%d/min burst %d per client IP", cfg.LoginRate, cfg.LoginBurst),
	}
}
