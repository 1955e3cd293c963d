package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/util"
)

// downloadPrefix marks paths whose next segment is a capability token.
const downloadPrefix = "/api/download/"

// RequestLogger logs every request with method, path, status, bytes and
// duration, and records the request metric. Health and info probes are
// recorded but not logged. metrics may be nil.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			metrics.RecordRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rec.status, duration)
			if isProbeEndpoint(r.URL.Path) {
				return
			}

			fields := map[string]interface{}{
				logger.FieldMethod:   r.Method,
				logger.FieldPath:     redactPath(r.URL.Path),
				logger.FieldStatus:   rec.status,
				logger.FieldBytes:    rec.bytes,
				logger.FieldDuration: duration.Milliseconds(),
			}
			if rng := r.Header.Get("Range"); rng != "" {
				fields[logger.FieldRange] = rng
			}
			logByStatus(log.WithContext(r.Context()), fields, rec.status)
		})
	}
}

func isProbeEndpoint(path string) bool {
	return path == "/health" || path == "/info"
}

// redactPath masks the capability token in download paths.
func redactPath(path string) string {
	rest, ok := strings.CutPrefix(path, downloadPrefix)
	if !ok {
		return path
	}
	token, name, _ := strings.Cut(rest, "/")
	return downloadPrefix + util.MaskToken(token) + "/" + name
}

// routeLabel collapses a path to its route family so metric cardinality
// stays bounded: /api/folders/abc -> /api/folders.
func routeLabel(path string) string {
	if !strings.HasPrefix(path, "/api/") {
		if isProbeEndpoint(path) {
			return path
		}
		return "other"
	}
	parts := strings.SplitN(strings.TrimPrefix(path, "/api/"), "/", 2)
	return "/api/" + parts[0]
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
