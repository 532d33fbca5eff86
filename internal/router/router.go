// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/atelier-booking/internal/config"
	"github.com/iliyamo/atelier-booking/internal/handler"
	"github.com/iliyamo/atelier-booking/internal/middleware"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Resources  *handler.ResourceHandler
	Bookings   *handler.BookingHandler
	Inquiries  *handler.InquiryHandler
	Categories *handler.CategoryHandler
}

// Options carries the settings of the shared middleware.  A nil Redis
// client disables rate limiting and the response cache.
type Options struct {
	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// Register mounts every route group.
func Register(e *echo.Echo, h Handlers, o Options) {
	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, o)
	RegisterPublic(e, h, o)
	RegisterAdmin(e, h, o)
}

// RegisterRoutes exposes the health check used by load balancers.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth mounts login under /v1/auth and the profile endpoint under
// /v1 behind the token check.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o Options) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, middleware.NewTokenBucket(o.RateLimit, o.Redis, o.RateLimit.WriteCapacity))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(o.JWTSecret))
}
