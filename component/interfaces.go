package component

import "context"

// HealthStatus is one of StatusHealthy, StatusDegraded or StatusUnhealthy.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

var severity = map[HealthStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

// Health is what a component reports on /health.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Overall returns the worst status in hs; an unknown status counts as
// unhealthy. No components means healthy.
func Overall(hs []Health) HealthStatus {
	worst := StatusHealthy
	for _, h := range hs {
		s, ok := severity[h.Status]
		if !ok {
			return StatusUnhealthy
		}
		if s > severity[worst] {
			worst = h.Status
		}
	}
	return worst
}

// Component is a part of the process with a start/stop lifecycle, such as
// the HTTP server, the Drive client or the telemetry exporters.
type Component interface {
	// Name is unique within a Registry.
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources; ctx carries the shutdown deadline.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is one line of the startup summary.
type Description struct {
	Name    string // display name; Name() when empty
	Type    string // "server", "upstream", "telemetry", ...
	Details string // e.g. "0.0.0.0:8080 h2c"
	Port    int    // 0 when not listening
}

// Describable components appear in the startup summary.
type Describable interface {
	Describe() Description
}

// HealthChecker aggregates component health. Registry implements it.
type HealthChecker interface {
	HealthAll(ctx context.Context) []Health
}
