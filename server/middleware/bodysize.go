package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/drivegate/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit restricts the request body to the given size string
// (e.g. "1MB", "4KB"). Unparseable values fall back to 1MB.
func BodySizeLimit(maxSize string) Middleware {
	size, err := util.ParseSize(maxSize)
	if err != nil || size <= 0 {
		size = defaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GinBodySizeLimit applies a tighter limit to a single route or group.
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	return GinWrap(BodySizeLimit(maxSize))
}
