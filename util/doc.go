// Package util holds small helpers shared across drivegate: byte-size
// parsing for body limits, token masking for logs and display filenames
// for Content-Disposition.
package util
