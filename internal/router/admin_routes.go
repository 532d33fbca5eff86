package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/middleware"
	"github.com/iliyamo/atelier-booking/internal/model"
)

// RegisterAdmin mounts the back-office endpoints under /v1/admin.  All
// routes require a valid token with the admin role; the services check
// the stored profile again.
func RegisterAdmin(e *echo.Echo, h Handlers, o Options) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(o.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// Resource edits and seat changes invalidate the cached storefront.
	purge := middleware.InvalidateCache(o.Cache, o.Redis)

	// ---- Workshops and Pause d'Art sessions ----
	for prefix, kind := range map[string]model.Kind{"/workshops": model.KindWorkshop, "/pause-art": model.KindPauseArt} {
		g.GET(prefix, h.Resources.ListAll(kind))
		g.POST(prefix, h.Resources.Create(kind), purge)
		g.PATCH(prefix+"/:id", h.Resources.Update(kind), purge)
		g.DELETE(prefix+"/:id", h.Resources.Delete(kind), purge)
	}

	// ---- Bookings ----
	g.GET("/bookings", h.Bookings.List(model.KindWorkshop))
	g.PATCH("/bookings/:id/status", h.Bookings.SetStatus(model.KindWorkshop), purge)
	g.GET("/pause-art-bookings", h.Bookings.List(model.KindPauseArt))
	g.PATCH("/pause-art-bookings/:id/status", h.Bookings.SetStatus(model.KindPauseArt), purge)

	// ---- Corporate inquiries ----
	g.GET("/corporate-inquiries", h.Inquiries.List)
	g.PATCH("/corporate-inquiries/:id/status", h.Inquiries.SetStatus)

	// ---- Categories ----
	g.GET("/categories", h.Categories.List)
	g.POST("/categories", h.Categories.Add)
	g.PATCH("/categories/:id", h.Categories.Update)
	g.DELETE("/categories/:id", h.Categories.Delete)
}
