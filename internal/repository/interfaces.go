package repository

import (
	"context"

	"erp-bff/internal/domain/user"
)

// UserRepository is the credential store behind sign-in and account creation.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
}
