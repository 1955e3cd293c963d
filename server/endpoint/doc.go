// Package endpoint holds the operational handlers mounted next to the API:
// /health aggregates component health and /info reports the build.
package endpoint
