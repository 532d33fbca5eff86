package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/middleware"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/resume"
	"github.com/iliyamo/atelier-booking/internal/service"
	"github.com/iliyamo/atelier-booking/internal/upload"
)

// BookingHandler serves the participant booking flows and the admin
// booking tables.
type BookingHandler struct {
	Bookings *service.BookingService
	Resume   *resume.Cache
}

func NewBookingHandler(s *service.BookingService, r *resume.Cache) *BookingHandler {
	if s == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: s, Resume: r}
}

type bookingReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	WhyJoin         string `json:"whyJoin"`
	LastTimeForSelf string `json:"lastTimeForSelf"`
	PaymentProofURL string `json:"paymentProofUrl"`
}

func (r bookingReq) input() service.BookingInput {
	return service.BookingInput{
		ContactInput:    service.ContactInput{Name: r.Name, Email: r.Email, Phone: r.Phone},
		WhyJoin:         r.WhyJoin,
		LastTimeForSelf: r.LastTimeForSelf,
	}
}

type statusReq struct {
	Status model.Status `json:"status"`
}

// readBooking decodes a JSON body or a multipart form with an optional
// "paymentProof" file.  The returned release func closes the file and
// must be called once the service returns.
func readBooking(c echo.Context) (service.BookingInput, service.Proof, func(), error) {
	release := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var req bookingReq
		if err := c.Bind(&req); err != nil {
			return service.BookingInput{}, service.Proof{}, release, err
		}
		return req.input(), service.Proof{URL: strings.TrimSpace(req.PaymentProofURL)}, release, nil
	}

	req := bookingReq{
		Name:            c.FormValue("name"),
		Email:           c.FormValue("email"),
		Phone:           c.FormValue("phone"),
		WhyJoin:         c.FormValue("whyJoin"),
		LastTimeForSelf: c.FormValue("lastTimeForSelf"),
		PaymentProofURL: strings.TrimSpace(c.FormValue("paymentProofUrl")),
	}
	fh, err := c.FormFile("paymentProof")
	if errors.Is(err, http.ErrMissingFile) {
		return req.input(), service.Proof{URL: req.PaymentProofURL}, release, nil
	}
	if err != nil {
		return service.BookingInput{}, service.Proof{}, release, err
	}
	if fh.Size > upload.MaxFileBytes {
		return service.BookingInput{}, service.Proof{}, release, upload.ErrTooLarge
	}
	ct := fh.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, "image/") {
		return service.BookingInput{}, service.Proof{}, release, upload.ErrUnsupportedType
	}
	f, err := fh.Open()
	if err != nil {
		return service.BookingInput{}, service.Proof{}, release, err
	}
	file := &upload.File{Name: fh.Filename, ContentType: ct, Size: fh.Size, Body: f}
	return req.input(), service.Proof{File: file}, func() { _ = f.Close() }, nil
}

func badProof(c echo.Context, err error) error {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "payment proof is larger than 5MB"})
	case errors.Is(err, upload.ErrUnsupportedType):
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "payment proof must be an image"})
	}
	return badBody(c)
}

// StartWorkshop opens the staged flow: a draft booking without a seat.
// With an X-Client-ID header the draft is remembered for ResumeDraft.
func (h *BookingHandler) StartWorkshop(c echo.Context) error {
	in, _, release, err := readBooking(c)
	defer release()
	if err != nil {
		return badProof(c, err)
	}
	ctx := c.Request().Context()
	resourceID := c.Param("id")
	b, err := h.Bookings.Start(ctx, model.KindWorkshop, resourceID, in)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Resume.Remember(ctx, middleware.ClientID(c), resourceID, b.ID); err != nil {
		log.Printf("resume: remember %s: %v", b.ID, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// AttachPayment completes a workshop draft with its payment proof.
func (h *BookingHandler) AttachPayment(c echo.Context) error {
	_, proof, release, err := readBooking(c)
	defer release()
	if err != nil {
		return badProof(c, err)
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.AttachPayment(ctx, model.KindWorkshop, c.Param("id"), proof)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Resume.Forget(ctx, middleware.ClientID(c), b.ResourceID); err != nil {
		log.Printf("resume: forget %s: %v", b.ID, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ResumeDraft returns the draft this client started for the workshop, if it
// is still a draft.  Entries pointing elsewhere are dropped.
func (h *BookingHandler) ResumeDraft(c echo.Context) error {
	client := middleware.ClientID(c)
	if client == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing " + middleware.ClientIDHeader + " header"})
	}
	ctx := c.Request().Context()
	resourceID := c.Param("id")
	id, ok, err := h.Resume.Lookup(ctx, client, resourceID)
	if err != nil {
		log.Printf("resume: lookup: %v", err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nothing to resume"})
	}
	b, err := h.Bookings.Draft(ctx, model.KindWorkshop, id)
	if err == nil && b.ResourceID != resourceID {
		err = service.ErrNotFound
	}
	if errors.Is(err, service.ErrNotFound) {
		_ = h.Resume.Forget(ctx, client, resourceID)
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nothing to resume"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// CreateSession books a Pause d'Art seat in one step.
func (h *BookingHandler) CreateSession(c echo.Context) error {
	in, proof, release, err := readBooking(c)
	defer release()
	if err != nil {
		return badProof(c, err)
	}
	b, err := h.Bookings.Create(c.Request().Context(), model.KindPauseArt, c.Param("id"), in, proof)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) List(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := h.Bookings.List(c.Request().Context(), kind)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *BookingHandler) SetStatus(kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req statusReq
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return badBody(c)
		}
		b, err := h.Bookings.SetStatus(c.Request().Context(), kind, c.Param("id"), req.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, b)
	}
}
