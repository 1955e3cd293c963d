// Package component defines the lifecycle contract shared by the gateway's
// long-lived parts.
//
// Components are registered with a Registry, started in registration order,
// stopped in reverse order and polled for health by the /health endpoint.
//
//   - Component: Name/Start/Stop/Health
//   - Describable: optional startup summary line
//   - HealthChecker: aggregated health, implemented by Registry
package component
