package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/service"
)

// CategoryHandler serves the admin category list.
type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(s *service.CategoryService) *CategoryHandler {
	if s == nil {
		panic("nil category service passed to NewCategoryHandler")
	}
	return &CategoryHandler{Categories: s}
}

type categoryReq struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) List(c echo.Context) error {
	list, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CategoryHandler) Add(c echo.Context) error {
	var req categoryReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c)
	}
	cat, err := h.Categories.Add(c.Request().Context(), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c)
	}
	cat, err := h.Categories.Update(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.Categories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
