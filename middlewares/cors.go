package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/drive/internal"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSOption configures the CORS middleware.
type CORSOption func(*corsConfig)

type corsConfig struct {
	allowOrigins     []string
	allowMethods     []string
	allowHeaders     []string
	exposeHeaders    []string
	maxAge           time.Duration
	allowCredentials bool
}

// WithAllowOrigins sets the allowed origins. "*" allows any origin.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.allowOrigins = origins
	}
}

// WithAllowHeaders replaces the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.allowHeaders = headers
	}
}

// WithAllowCredentials enables credentials support.
// The actual origin is echoed instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *corsConfig) {
		cfg.allowCredentials = true
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *corsConfig) {
		cfg.maxAge = d
	}
}

// CORS returns middleware for browser clients of the storage API. It
// answers preflight requests and exposes the headers download clients need.
// With no allowed origins configured it adds no headers.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &corsConfig{
		allowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		allowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", DefaultAccountHeader},
		exposeHeaders: []string{"Content-Disposition", "Content-Length", "X-Request-ID"},
		maxAge:        DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	allowMethods := strings.Join(cfg.allowMethods, ", ")
	allowHeaders := strings.Join(cfg.allowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.exposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.maxAge.Seconds()))
	wildcard := slices.Contains(cfg.allowOrigins, "*")

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !(wildcard || slices.Contains(cfg.allowOrigins, origin)) {
				return next(c)
			}

			headers := c.Response().Header()
			headers.Add("Vary", "Origin")
			if cfg.allowCredentials || !wildcard {
				headers.Set("Access-Control-Allow-Origin", origin)
			} else {
				headers.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.allowCredentials {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}
			headers.Set("Access-Control-Expose-Headers", exposeHeaders)

			if c.Request().Method == http.MethodOptions && c.Header("Access-Control-Request-Method") != "" {
				headers.Add("Vary", "Access-Control-Request-Method")
				headers.Add("Vary", "Access-Control-Request-Headers")
				headers.Set("Access-Control-Allow-Methods", allowMethods)
				headers.Set("Access-Control-Allow-Headers", allowHeaders)
				if cfg.maxAge > 0 {
					headers.Set("Access-Control-Max-Age", maxAge)
				}
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
