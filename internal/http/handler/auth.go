package handler

import (
	"net/http"
	"time"

	"erp-bff/internal/audit"
	"erp-bff/internal/auth"
	"erp-bff/internal/domain/session"
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	identity     IdentityService
	cookies      SessionCookies
	csrf         CSRFTokens
	audit        *audit.Logger
	cookieSecure bool
}

func NewAuthHandler(identity IdentityService, cookies SessionCookies, csrf CSRFTokens, auditLogger *audit.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		identity:     identity,
		cookies:      cookies,
		csrf:         csrf,
		audit:        auditLogger,
		cookieSecure: cookieSecure,
	}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	User      session.UserView `json:"user"`
	Expires   time.Time        `json:"expires"`
	CSRFToken string           `json:"csrf_token"`
}

type CSRFResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// SignIn verifies credentials, sets the session cookie and returns the
// session view. The bearer token itself never appears in the body.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	s, err := h.identity.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInvalidCredentials {
			h.audit.LogFromContext(c, nil, audit.ResourceTypeUser, "", audit.ActionLogin, audit.StatusFailure, 0, "")
		}
		return respondError(c, err)
	}

	h.audit.LogFromContext(c, s, audit.ResourceTypeUser, s.Subject, audit.ActionLogin, audit.StatusSuccess, 0, "")
	c.SetCookie(h.cookies.SessionCookie(s, h.cookieSecure))

	view := s.View()
	return c.JSON(http.StatusOK, SignInResponse{
		User:      view.User,
		Expires:   view.Expires,
		CSRFToken: h.csrf.Token(s.Token),
	})
}

// SignOut clears the cookie. It succeeds whether or not a session exists.
func (h *AuthHandler) SignOut(c echo.Context) error {
	c.SetCookie(h.cookies.ClearedCookie(h.cookieSecure))
	h.audit.LogFromContext(c, nil, audit.ResourceTypeUser, "", audit.ActionLogout, audit.StatusSuccess, 0, "")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Session(c echo.Context) error {
	s, ok := auth.SessionFrom(c)
	if !ok {
		return respondError(c, apperrors.Unauthorized(msgAuthenticationRequired))
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *AuthHandler) CSRF(c echo.Context) error {
	s, ok := auth.SessionFrom(c)
	if !ok {
		return respondError(c, apperrors.Unauthorized(msgAuthenticationRequired))
	}
	return c.JSON(http.StatusOK, CSRFResponse{CSRFToken: h.csrf.Token(s.Token)})
}
