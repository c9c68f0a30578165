package handler

import (
	"context"
	"net/http"

	"erp-bff/internal/auth"
	"erp-bff/internal/domain/session"
	"erp-bff/internal/domain/user"
)

// Consumer-side interfaces defined by handlers

type IdentityService interface {
	Authenticate(ctx context.Context, email, password string) (*session.Session, error)
	CreateUser(ctx context.Context, req auth.CreateUserRequest) (*user.User, error)
}

type SessionCookies interface {
	SessionCookie(s *session.Session, secure bool) *http.Cookie
	ClearedCookie(secure bool) *http.Cookie
}

type CSRFTokens interface {
	Token(sessionToken string) string
}
