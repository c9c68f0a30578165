package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"erp-bff/internal/domain/session"
	"erp-bff/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of every issued session.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for u and returns the Session it proves.
func (s *TokenService) Issue(u *user.User) (*session.Session, error) {
	now := s.now().Truncate(time.Second)
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}

	claims := Claims{
		Email: u.Email,
		Name:  u.FullName,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf(msgSignTokenFailed, err)
	}

	return &session.Session{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		Roles:     roles,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

// Verify checks signature, algorithm and expiry, then rebuilds the Session.
func (s *TokenService) Verify(tokenString string) (*session.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf(msgTokenParseFailed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New(msgInvalidTokenClaims)
	}
	if claims.Subject == "" {
		return nil, errors.New(msgTokenSubjectMissing)
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}

	sess := &session.Session{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Roles:   roles,
		Token:   tokenString,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	sess.ExpiresAt = claims.ExpiresAt.Time
	if sess.Expired(s.now()) {
		return nil, errors.New(msgTokenExpired)
	}

	return sess, nil
}
