package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/drivegate/component"
)

// RouteInfo is a registered HTTP route.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary prints what the process started with: components from the
// registry, routes and a live health check.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
	notes           []string
	out             io.Writer
}

// NewSummary creates a summary printing to os.Stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// AddNote records a free-form line, such as a missing setting.
func (s *Summary) AddNote(note string) {
	s.notes = append(s.notes, note)
}

// Display writes the summary. registry may be nil.
func (s *Summary) Display(registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	if registry != nil {
		if descs := registry.Describe(); len(descs) > 0 {
			fmt.Fprintf(w, "\n📊 Components\n")
			for i, d := range descs {
				details := d.Details
				if d.Port > 0 {
					details = fmt.Sprintf("%s (:%d)", details, d.Port)
				}
				fmt.Fprintf(w, "   %s %s [%s]: %s\n", treePrefix(i, len(descs)), d.Name, d.Type, details)
			}
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-6s %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path)
		}
	}

	if len(s.notes) > 0 {
		fmt.Fprintf(w, "\n⚠️  Notes\n")
		for i, n := range s.notes {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(s.notes)), n)
		}
	}

	if registry != nil {
		if results := registry.HealthAll(context.Background()); len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)),
					healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
