package session

import (
	"slices"
	"strconv"
	"time"
)

// Session is proof of a successful sign-in. It is immutable once issued and
// carries the bearer token forwarded to upstream services.
type Session struct {
	Subject   string
	Name      string
	Email     string
	Roles     []string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports exact membership; there is no role hierarchy.
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Roles, role)
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NumericSubject returns the subject as an account id when it is numeric.
func (s *Session) NumericSubject() (int64, bool) {
	id, err := strconv.ParseInt(s.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// View is the browser-facing representation of a session; it never includes
// the bearer token.
type View struct {
	User    UserView  `json:"user"`
	Expires time.Time `json:"expires"`
}

type UserView struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func (s *Session) View() View {
	roles := s.Roles
	if roles == nil {
		roles = []string{}
	}
	return View{
		User: UserView{
			ID:    s.Subject,
			Email: s.Email,
			Name:  s.Name,
			Roles: roles,
		},
		Expires: s.ExpiresAt.UTC(),
	}
}
