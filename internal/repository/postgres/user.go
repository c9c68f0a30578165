package postgres

import (
	"context"
	"errors"
	"fmt"

	"erp-bff/internal/domain/user"
	apperrors "erp-bff/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const selectUserWithRoles = `
	SELECT u.id, u.email, u.password_hash, u.full_name, u.is_active, u.is_verified,
	       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles,
	       u.created_at, u.updated_at
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id
`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := selectUserWithRoles + `
	WHERE u.email = $1
	GROUP BY u.id
	`

	u := &user.User{}
	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.IsActive,
		&u.IsVerified,
		&u.Roles,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

// Create inserts the account and grants DefaultRole in one transaction.
func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, full_name, is_active, is_verified, created_at, updated_at
	`

	u := &user.User{}
	err = tx.QueryRow(ctx, userQuery, input.Email, input.PasswordHash, input.FullName).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.IsActive,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errUserEmailExists)
		}
		return nil, errFailedCreateUser(err)
	}

	u.Roles = []string{}
	if input.DefaultRole != "" {
		roleQuery := `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
		`
		tag, err := tx.Exec(ctx, roleQuery, u.ID, input.DefaultRole)
		if err != nil {
			return nil, errFailedGrantRole(err)
		}
		if tag.RowsAffected() == 0 {
			return nil, errFailedGrantRole(fmt.Errorf(errRoleNotFoundFmt, input.DefaultRole))
		}
		u.Roles = []string{input.DefaultRole}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return u, nil
}
