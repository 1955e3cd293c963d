package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig is the server.cors section. An origin of "*" admits any origin.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers" mapstructure:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
}

type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]bool
	static      http.Header
	credentials bool
}

func newCORSPolicy(cfg *CORSConfig) *corsPolicy {
	p := &corsPolicy{origins: map[string]bool{}, static: http.Header{}, credentials: cfg.AllowCredentials}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = true
	}
	for name, values := range map[string][]string{
		"Access-Control-Allow-Methods":  cfg.AllowedMethods,
		"Access-Control-Allow-Headers":  cfg.AllowedHeaders,
		"Access-Control-Expose-Headers": cfg.ExposedHeaders,
	} {
		if len(values) > 0 {
			p.static.Set(name, strings.Join(values, ", "))
		}
	}
	if cfg.AllowCredentials {
		p.static.Set("Access-Control-Allow-Credentials", "true")
	}
	return p
}

// apply writes the CORS headers for origin if it is allowed.
func (p *corsPolicy) apply(h http.Header, origin string) {
	if origin == "" || !(p.anyOrigin || p.origins[origin]) {
		return
	}
	// a credentialed response may not use the wildcard
	if p.anyOrigin && !p.credentials {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	for k, v := range p.static {
		h[k] = v
	}
}

// CORS sets CORS headers for allowed origins and answers preflight requests
// with 204 without calling next.
func CORS(cfg *CORSConfig) Middleware {
	policy := newCORSPolicy(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.apply(w.Header(), r.Header.Get("Origin"))
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
