package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/empowhr-payroll/pkg/auth"
)

// MiddlewareConfig holds middleware configuration
type MiddlewareConfig struct {
	EnableLogging bool
	EnableTracing bool
	EnableMetrics bool
	// Verifier is nil when JWT_SECRET is unset; auth is then skipped.
	Verifier *auth.Verifier
	// Limiter is nil when Redis is not configured.
	Limiter *RateLimiter
}

// DefaultMiddlewareConfig returns default middleware configuration
func DefaultMiddlewareConfig(verifier *auth.Verifier, limiter *RateLimiter) MiddlewareConfig {
	return MiddlewareConfig{
		EnableLogging: true,
		EnableTracing: true,
		EnableMetrics: true,
		Verifier:      verifier,
		Limiter:       limiter,
	}
}

// RegisterMiddlewares registers all middlewares to the router
func RegisterMiddlewares(router *mux.Router, config MiddlewareConfig) {
	// Tracing first so the logging middleware sees the span
	if config.EnableTracing {
		router.Use(func(next http.Handler) http.Handler {
			return TracingMiddleware("http-request", next)
		})
	}

	if config.EnableLogging {
		router.Use(LoggingMiddleware)
	}

	if config.EnableMetrics {
		router.Use(MetricsMiddleware)
	}
}

// RequireAuth returns the auth middleware
func (config MiddlewareConfig) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return AuthMiddleware(config.Verifier)(next)
}

// RequireRoles returns a middleware admitting only the given roles
func (config MiddlewareConfig) RequireRoles(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return RoleMiddleware(config.Verifier, roles...)
}

// RateLimit applies the Redis limiter when one is configured
func (config MiddlewareConfig) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	if config.Limiter == nil {
		return next
	}
	return config.Limiter.Middleware(next)
}
