package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/service"
)

// AuthHandler serves admin login and the current profile.
type AuthHandler struct {
	Auth  *service.AuthService
	Guard service.Guard
}

func NewAuthHandler(a *service.AuthService, g service.Guard) *AuthHandler {
	if a == nil {
		panic("nil auth service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: a, Guard: g}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

func toUserPart(p model.Profile) userPart {
	return userPart{ID: p.ID, Email: p.Email, Name: p.Name, Role: p.Role}
}

// Login exchanges email and password for an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	tok, p, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:   toUserPart(p),
		Access: tokenPart{Token: tok.Token, Expires: tok.Exp},
	})
}

// Me returns the authenticated admin's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := h.Guard.EnsureAdmin(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(p))
}
