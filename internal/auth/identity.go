package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"erp-bff/internal/domain/session"
	"erp-bff/internal/domain/user"
	"erp-bff/internal/rbac"
	"erp-bff/internal/rbac/presets"
	"erp-bff/internal/repository"
	apperrors "erp-bff/pkg/errors"
	"erp-bff/pkg/password"
	"erp-bff/pkg/validator"
)

// IdentityProvider verifies credentials against the credential store and
// issues sessions. Sign-in never writes to the store.
type IdentityProvider struct {
	users  repository.UserRepository
	hasher *password.Hasher
	tokens *TokenService
	roles  *rbac.Checker
	logger *slog.Logger
}

func NewIdentityProvider(users repository.UserRepository, hasher *password.Hasher, tokens *TokenService, roles *rbac.Checker, logger *slog.Logger) *IdentityProvider {
	return &IdentityProvider{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		roles:  roles,
		logger: logger,
	}
}

// Authenticate returns a Session for valid credentials. Unknown email, wrong
// password and inactive account are indistinguishable to the caller.
func (p *IdentityProvider) Authenticate(ctx context.Context, email, pass string) (*session.Session, error) {
	email = validator.NormalizeEmail(email)
	if email == "" || pass == "" {
		p.hasher.BurnTime(pass)
		return nil, apperrors.InvalidCredentials()
	}

	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			p.hasher.BurnTime(pass)
			p.rejected(ctx, email, reasonUnknownEmail)
			return nil, apperrors.InvalidCredentials()
		}
		return nil, apperrors.ServiceUnavailable(msgCredentialStoreDown, err)
	}

	if !p.hasher.Verify(pass, u.PasswordHash) {
		p.rejected(ctx, email, reasonWrongPassword)
		return nil, apperrors.InvalidCredentials()
	}

	if !u.IsActive {
		p.rejected(ctx, email, reasonInactive)
		return nil, apperrors.InvalidCredentials()
	}

	s, err := p.tokens.Issue(u)
	if err != nil {
		return nil, apperrors.Internal(msgSignTokenFailed, err)
	}

	p.logger.InfoContext(ctx, "sign_in_succeeded", slog.String("subject", s.Subject), slog.Any("roles", s.Roles))
	return s, nil
}

func (p *IdentityProvider) rejected(ctx context.Context, email, reason string) {
	p.logger.InfoContext(ctx, "sign_in_rejected", slog.String("email", email), slog.String("reason", reason))
}

type CreateUserRequest struct {
	Email    string
	Password string
	FullName string
}

// CreateUser validates the request, hashes the password and stores the
// account with the default role.
func (p *IdentityProvider) CreateUser(ctx context.Context, req CreateUserRequest) (*user.User, error) {
	email := validator.NormalizeEmail(req.Email)
	if err := validator.Email(email); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.Password(req.Password); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.FullName(req.FullName); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	// The default role must exist in the role table before anything is stored.
	role, err := p.roles.ValidateRole(string(presets.DefaultRole))
	if err != nil {
		return nil, apperrors.Internal(msgDefaultRoleInvalid, err)
	}

	hash, err := p.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(msgHashPasswordFailed, err)
	}

	u, err := p.users.Create(ctx, user.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		DefaultRole:  string(role),
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Internal(msgCreateUserFailed, err)
	}

	return u, nil
}
