// Package errors provides unified error handling for drivegate.
//
// Every failure that crosses the HTTP boundary is an *AppError. Classify folds
// an error into one of a small set of Outcomes which the gateway maps to log
// levels; the AppError itself carries the status code. Upstream detail lives
// in Cause and is logged, never rendered.
package errors
