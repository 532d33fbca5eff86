package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/atelier-booking/internal/auth"
	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/handler"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
	"github.com/iliyamo/atelier-booking/internal/resume"
	"github.com/iliyamo/atelier-booking/internal/service"
	"github.com/iliyamo/atelier-booking/internal/upload"
)

const secret = "router-test-secret"

type stubUploader struct{ got []byte }

func (u *stubUploader) Upload(_ context.Context, f upload.File, folder string) (string, error) {
	u.got, _ = io.ReadAll(f.Body)
	return "https://cdn.example.com/" + folder + "/" + f.Name, nil
}

type api struct {
	e        *echo.Echo
	uploader *stubUploader
	admin    string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := docstore.New(docstore.NewMemory(), docstore.WithBackoff(0))
	profiles := repository.NewProfileRepo(store)
	hash, err := auth.HashPassword("admin-pass", 4)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, profiles.Create(ctx, model.Profile{ID: "admin-1", Email: "admin@atelier.ma", Role: model.RoleAdmin, PasswordHash: hash}))
	require.NoError(t, profiles.Create(ctx, model.Profile{ID: "visitor-1", Email: "visitor@atelier.ma"}))

	base := service.Base{Store: store, Guard: service.Guard{Profiles: profiles}}
	resources := repository.NewResourceRepo(store)
	bookings := service.NewBookingService(base, resources, repository.NewBookingRepo(store), model.DefaultSeatPolicies())
	up := &stubUploader{}
	bookings.Uploader = up

	e := echo.New()
	Register(e, Handlers{
		Health:     &handler.HealthHandler{},
		Auth:       handler.NewAuthHandler(service.NewAuthService(profiles, secret, 5), base.Guard),
		Resources:  handler.NewResourceHandler(service.NewResourceService(base, resources)),
		Bookings:   handler.NewBookingHandler(bookings, resume.New(nil, 0)),
		Inquiries:  handler.NewInquiryHandler(service.NewInquiryService(base, repository.NewInquiryRepo(store))),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(base, repository.NewCategoryRepo(store))),
	}, Options{JWTSecret: secret})

	a := &api{e: e, uploader: up}
	rec := a.do(t, http.MethodPost, "/v1/auth/login", `{"email":"Admin@Atelier.ma","password":"admin-pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	a.admin = login.Access.Token
	return a
}

func (a *api) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *api) createResource(t *testing.T, prefix, body string) model.Resource {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/admin/"+prefix, body, a.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Resource](t, rec)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","redis":"disabled"}`, rec.Body.String())
}

func TestAdminRoutesNeedAdminToken(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/v1/admin/bookings", "", "").Code)

	tok, err := auth.NewAccessToken(secret, "visitor-1", "visitor", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/v1/admin/bookings", "", tok.Token).Code)

	// A forged role claim still fails on the stored profile.
	ghost, err := auth.NewAccessToken(secret, "ghost", model.RoleAdmin, 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/v1/admin/bookings", "", ghost.Token).Code)

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/v1/admin/bookings", "", a.admin).Code)

	rec := a.do(t, http.MethodGet, "/v1/me", "", a.admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin@atelier.ma"`)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodPost, "/v1/auth/login", `{"email":"admin@atelier.ma","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, http.MethodPost, "/v1/auth/login", `{"email":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStagedWorkshopBookingOverHTTP(t *testing.T) {
	a := newAPI(t)
	w := a.createResource(t, "workshops", `{"title":"Céramique","date":"2025-05-03","startTime":"14:30","endTime":"17:00","capacity":1,"price":450,"status":"published"}`)

	rec := a.do(t, http.MethodGet, "/v1/workshops", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Resource](t, rec), 1)

	rec = a.do(t, http.MethodPost, "/v1/workshops/"+w.ID+"/bookings", `{"name":"Amal","email":"amal@example.com","phone":"0600"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decode[model.Booking](t, rec)
	assert.Equal(t, model.StatusDraft, draft.Status)

	rec = a.do(t, http.MethodPost, "/v1/bookings/"+draft.ID+"/payment", `{"paymentProofUrl":"https://cdn.example.com/p.jpg"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPatch, "/v1/admin/bookings/"+draft.ID+"/status", `{"status":"confirmed"}`, a.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.StatusConfirmed, decode[model.Booking](t, rec).Status)

	rec = a.do(t, http.MethodGet, "/v1/admin/workshops", "", a.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Resource](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].BookedSeats)
	assert.Equal(t, model.ResourceFullyBooked, list[0].Status)

	rec = a.do(t, http.MethodPost, "/v1/workshops/"+w.ID+"/bookings", `{"name":"Late","phone":"0600"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code, "drafts need no free seat")
	late := decode[model.Booking](t, rec)
	a.do(t, http.MethodPost, "/v1/bookings/"+late.ID+"/payment", `{"paymentProofUrl":"https://cdn.example.com/q.jpg"}`, "")
	rec = a.do(t, http.MethodPatch, "/v1/admin/bookings/"+late.ID+"/status", `{"status":"confirmed"}`, a.admin)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestResumeNeedsClientID(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/v1/workshops/w1/resume", "", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/workshops/w1/resume", nil)
	req.Header.Set("X-Client-ID", "browser-1")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBooking(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="paymentProof"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDirectSessionBookingWithUpload(t *testing.T) {
	a := newAPI(t)
	s := a.createResource(t, "pause-art", `{"title":"Pause d'Art","date":"2025-06-01","startTime":"10:00","capacity":1,"price":300,"status":"published","todos":["apron"]}`)

	rec := a.do(t, http.MethodGet, "/v1/pause-art/featured", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s.ID, decode[model.Resource](t, rec).ID)

	fields := map[string]string{"name": "Nora", "email": "nora@example.com", "phone": "0611", "whyJoin": "to breathe"}
	body, ct := multipartBooking(t, fields, "proof.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/v1/pause-art/"+s.ID+"/bookings", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := decode[model.Booking](t, rec)
	assert.Equal(t, "https://cdn.example.com/payment-proofs/proof.png", b.PaymentProofURL)
	assert.Equal(t, "to breathe", b.WhyJoin)
	assert.Equal(t, "png-bytes", string(a.uploader.got))

	rec = a.do(t, http.MethodPost, "/v1/pause-art/"+s.ID+"/bookings", `{"name":"Late","phone":"1","paymentProofUrl":"https://cdn.example.com/x.jpg"}`, "")
	assert.Equal(t, http.StatusGone, rec.Code)

	body, ct = multipartBooking(t, fields, "proof.pdf", "application/pdf", []byte("%PDF"))
	req = httptest.NewRequest(http.MethodPost, "/v1/pause-art/"+s.ID+"/bookings", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestValidationAndConflictStatuses(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, http.MethodPost, "/v1/corporate-inquiries", `{"companyName":"Atlas"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fields"`)

	rec = a.do(t, http.MethodPost, "/v1/admin/categories", `{"name":"Peinture"}`, a.admin)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(t, http.MethodPost, "/v1/admin/categories", `{"name":"peinture"}`, a.admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPatch, "/v1/admin/workshops/missing", `{"title":"x"}`, a.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodPatch, "/v1/admin/workshops/missing", `not json`, a.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
