package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/service"
)

// InquiryHandler serves corporate quote requests.
type InquiryHandler struct {
	Inquiries *service.InquiryService
}

func NewInquiryHandler(s *service.InquiryService) *InquiryHandler {
	if s == nil {
		panic("nil inquiry service passed to NewInquiryHandler")
	}
	return &InquiryHandler{Inquiries: s}
}

func (h *InquiryHandler) Submit(c echo.Context) error {
	var in service.InquiryInput
	if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
		return badBody(c)
	}
	q, err := h.Inquiries.Submit(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, q)
}

func (h *InquiryHandler) List(c echo.Context) error {
	list, err := h.Inquiries.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *InquiryHandler) SetStatus(c echo.Context) error {
	var req statusReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c)
	}
	q, err := h.Inquiries.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}
