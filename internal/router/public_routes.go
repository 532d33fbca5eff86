package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/middleware"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// RegisterPublic mounts the storefront endpoints.  They need no token.
// Catalogue reads go through the response cache; submissions get the
// smaller write bucket of the rate limiter, and those that may move a seat
// invalidate the cached catalogue.
func RegisterPublic(e *echo.Echo, h Handlers, o Options) {
	reads := e.Group("/v1",
		middleware.NewTokenBucket(o.RateLimit, o.Redis, o.RateLimit.Capacity),
		middleware.NewRedisCache(o.Cache, o.Redis),
	)
	reads.GET("/workshops", h.Resources.ListPublished(model.KindWorkshop))
	reads.GET("/pause-art", h.Resources.ListPublished(model.KindPauseArt))
	reads.GET("/pause-art/featured", h.Resources.Featured)

	writes := e.Group("/v1", middleware.NewTokenBucket(o.RateLimit, o.Redis, o.RateLimit.WriteCapacity))
	purge := middleware.InvalidateCache(o.Cache, o.Redis)
	writes.POST("/workshops/:id/bookings", h.Bookings.StartWorkshop)
	writes.POST("/bookings/:id/payment", h.Bookings.AttachPayment, purge)
	writes.POST("/pause-art/:id/bookings", h.Bookings.CreateSession, purge)
	writes.POST("/corporate-inquiries", h.Inquiries.Submit)

	// Resume state changes with every draft, so it bypasses the cache.
	e.GET("/v1/workshops/:id/resume", h.Bookings.ResumeDraft,
		middleware.NewTokenBucket(o.RateLimit, o.Redis, o.RateLimit.Capacity))
}
