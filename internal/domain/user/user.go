package user

import "time"

// User is an account in the credential store together with the names of the
// roles granted to it.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	IsVerified   bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserInput struct {
	Email        string
	PasswordHash string
	FullName     string
	DefaultRole  string
}
