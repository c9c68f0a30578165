package auth

import (
	"net/http"
	"strings"

	"erp-bff/internal/domain/session"
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

// Middleware resolves the Session for a request from the session cookie or,
// for non-browser clients, from an Authorization bearer header.
type Middleware struct {
	tokens     *TokenService
	cookieName string
}

func NewMiddleware(tokens *TokenService, cookieName string) *Middleware {
	return &Middleware{
		tokens:     tokens,
		cookieName: cookieName,
	}
}

// RequireSession resolves the session from the cookie, then from the
// Authorization header. A cookie that fails verification does not hide a
// valid bearer token sent alongside it.
func (m *Middleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			candidates := m.candidateTokens(c)
			if len(candidates) == 0 {
				return respondError(c, apperrors.Unauthorized(msgMissingSession))
			}

			for _, cand := range candidates {
				s, err := m.tokens.Verify(cand.token)
				if err != nil {
					continue
				}
				c.Set(ContextKeySession, s)
				c.Set(ContextKeyAuthSource, cand.source)
				return next(c)
			}

			return respondError(c, apperrors.Unauthorized(msgInvalidOrExpiredSession))
		}
	}
}

type candidateToken struct {
	token  string
	source AuthSource
}

func (m *Middleware) candidateTokens(c echo.Context) []candidateToken {
	var candidates []candidateToken
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		candidates = append(candidates, candidateToken{token: cookie.Value, source: AuthSourceCookie})
	}
	if token := extractBearerToken(c); token != "" {
		candidates = append(candidates, candidateToken{token: token, source: AuthSourceBearer})
	}
	return candidates
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

// SessionFrom returns the Session stored by RequireSession.
func SessionFrom(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(ContextKeySession).(*session.Session)
	return s, ok && s != nil
}

func GetAuthSource(c echo.Context) AuthSource {
	source, _ := c.Get(ContextKeyAuthSource).(AuthSource)
	return source
}

// SessionCookie builds the cookie carrying s. Its lifetime matches the token.
func (m *Middleware) SessionCookie(s *session.Session, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    s.Token,
		Path:     cookiePath,
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Middleware) ClearedCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     cookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func respondError(c echo.Context, err *apperrors.AppError) error {
	return c.JSON(err.Status(), err.Body())
}
