package drive

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/drivegate/component"
)

const componentName = "drive"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component exposes the Drive client to the lifecycle registry. It holds no
// connections of its own; Health reports the credential cache state.
type Component struct {
	client *Client
}

// NewComponent wraps client.
func NewComponent(client *Client) *Component {
	return &Component{client: client}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start logs missing OAuth settings. It never fails: requests report the
// configuration error instead.
func (c *Component) Start(ctx context.Context) error {
	if missing := c.client.cfg.Missing(); len(missing) > 0 {
		c.client.log.Warn("Drive credentials not configured", map[string]interface{}{
			"missing": strings.Join(missing, ", "),
		})
	}
	return nil
}

// Stop empties the credential cache.
func (c *Component) Stop(ctx context.Context) error {
	c.client.creds.Invalidate()
	return nil
}

// Health is degraded when credentials are missing or the last refresh
// failed, healthy otherwise. The upstream is not probed.
func (c *Component) Health(ctx context.Context) component.Health {
	creds := c.client.creds
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	switch {
	case !creds.Configured():
		h.Status = component.StatusDegraded
		h.Message = "credentials not configured"
	case creds.LastError() != nil:
		h.Status = component.StatusDegraded
		h.Message = "last credential refresh failed"
	default:
		h.Message = "credential " + creds.State().String()
	}
	return h
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Google Drive",
		Type:    "upstream",
		Details: fmt.Sprintf("%s root=%s page_size=%d", c.client.cfg.BaseURL, c.client.RootID(), c.client.cfg.PageSize),
	}
}
