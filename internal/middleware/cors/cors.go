package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Config holds CORS configuration
type Config struct {
	// AllowedOrigins lists exact origins; "*" allows any
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int // seconds
}

// DefaultConfig allows any origin to issue GET requests
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		MaxAge:         600,
	}
}

// Middleware applies CORS headers and answers preflight requests
type Middleware struct {
	config   Config
	wildcard bool
}

// NewMiddleware creates a new CORS middleware. Missing fields take the
// DefaultConfig values.
func NewMiddleware(config Config) *Middleware {
	def := DefaultConfig()
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = def.AllowedOrigins
	}
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = def.AllowedMethods
	}
	if len(config.AllowedHeaders) == 0 {
		config.AllowedHeaders = def.AllowedHeaders
	}
	return &Middleware{
		config:   config,
		wildcard: slices.Contains(config.AllowedOrigins, "*"),
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or ""
func (m *Middleware) allowOrigin(origin string) string {
	if m.wildcard {
		return "*"
	}
	if origin != "" && slices.Contains(m.config.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

// Middleware returns the HTTP middleware function. OPTIONS requests are
// answered with 204 and never reach next.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		if allowed := m.allowOrigin(r.Header.Get("Origin")); allowed != "" {
			headers.Set("Access-Control-Allow-Origin", allowed)
			if !m.wildcard {
				headers.Add("Vary", "Origin")
			}
		}

		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		headers.Set("Access-Control-Allow-Methods", strings.Join(m.config.AllowedMethods, ", "))
		headers.Set("Access-Control-Allow-Headers", strings.Join(m.config.AllowedHeaders, ", "))
		if m.config.MaxAge > 0 {
			headers.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
