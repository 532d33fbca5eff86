package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/service"
)

// ResourceHandler serves workshops and Pause d'Art sessions.  Most
// methods return a handler bound to one resource kind so the same code
// backs both route families.
type ResourceHandler struct {
	Resources *service.ResourceService
}

func NewResourceHandler(s *service.ResourceService) *ResourceHandler {
	if s == nil {
		panic("nil resource service passed to NewResourceHandler")
	}
	return &ResourceHandler{Resources: s}
}

// ListPublished is the public catalogue.
func (h *ResourceHandler) ListPublished(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := h.Resources.ListPublished(c.Request().Context(), kind)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

// Featured returns the current Pause d'Art session.
func (h *ResourceHandler) Featured(c echo.Context) error {
	res, err := h.Resources.Featured(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if res == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no featured session"})
	}
	return c.JSON(http.StatusOK, res)
}

// ListAll is the admin table; ?status= narrows it.
func (h *ResourceHandler) ListAll(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := h.Resources.ListAll(c.Request().Context(), kind, c.QueryParam("status"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *ResourceHandler) Create(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in service.ResourceInput
		if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
			return badBody(c)
		}
		res, err := h.Resources.Create(c.Request().Context(), kind, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, res)
	}
}

// Update applies a partial JSON object.  The body is decoded by hand so
// that path parameters never leak into the patch.
func (h *ResourceHandler) Update(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch map[string]any
		if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
			return badBody(c)
		}
		res, err := h.Resources.Update(c.Request().Context(), kind, c.Param("id"), patch)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func (h *ResourceHandler) Delete(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.Resources.Delete(c.Request().Context(), kind, c.Param("id")); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
