// Package server runs the gateway's HTTP surface: a gin engine served over
// HTTP/1.1 and h2c, wrapped in a net/http middleware chain and managed as a
// component.
//
// # Middleware
//
// Applied around every request (server/middleware):
//
//   - Recovery: panic to 500 with a logged stack
//   - RequestID: X-Request-Id propagation into the logger context
//   - RequestLogger: structured access log plus request metrics
//   - CORS: origin allow-list and preflight
//   - BodySizeLimit: request body cap
//
// Route-level gin middleware: RateLimit, RequireSession, GinBodySizeLimit.
//
// # Endpoints
//
//   - /health: component health aggregation
//   - /info: build information
package server
