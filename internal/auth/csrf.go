package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

// CSRF derives a per-session token from the session token itself, so no
// token table is kept. Only cookie-authenticated writes are checked.
type CSRF struct {
	secret []byte
}

func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: []byte(secret)}
}

// Token returns the CSRF token bound to a session token.
func (m *CSRF) Token(sessionToken string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(csrfContextPrefix + sessionToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Middleware must run after RequireSession.
func (m *CSRF) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			if GetAuthSource(c) != AuthSourceCookie {
				return next(c)
			}

			s, ok := SessionFrom(c)
			if !ok {
				return respondError(c, apperrors.Unauthorized(msgMissingSession))
			}

			provided := c.Request().Header.Get(headerCSRFToken)
			if provided == "" {
				return respondError(c, apperrors.Forbidden(msgCSRFTokenRequired))
			}

			expected := m.Token(s.Token)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				return respondError(c, apperrors.Forbidden(msgCSRFTokenInvalid))
			}

			return next(c)
		}
	}
}
