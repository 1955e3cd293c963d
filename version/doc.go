// Package version holds the build identity of the drivegate binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/drivegate/version.Version=1.2.0" ./cmd/drivegate
//
// Anything left empty is filled from the module's embedded VCS build info.
package version
