// Package logger provides structured logging for drivegate using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with map-based structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("drive")
//	log.Info("credential refreshed", logger.Fields("expires_in", 3599))
package logger
