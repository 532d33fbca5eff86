package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/atelier-booking/internal/service"
)

func TestFailStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&service.ValidationError{Msg: "missing required fields", Fields: []string{"phone"}}, http.StatusBadRequest},
		{&service.ValidationError{Msg: "invalid fields", Fields: []string{"email"}}, http.StatusUnprocessableEntity},
		{service.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrProfileNotFound, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("booking b1: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrNotAvailable, http.StatusConflict},
		{service.ErrSoldOut, http.StatusGone},
		{fmt.Errorf("%w: bucket down", service.ErrUploadFailed), http.StatusBadGateway},
		{service.ErrTransactionConflict, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		assert.NoError(t, fail(c, tc.err))
		assert.Equal(t, tc.code, rec.Code, "%v", tc.err)
	}
}

func TestFailListsValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = fail(c, &service.ValidationError{Msg: "missing required fields", Fields: []string{"name", "phone"}})
	assert.JSONEq(t, `{"error":"missing required fields","fields":["name","phone"]}`, rec.Body.String())
}
