package handler

import (
	"net/http"
	"strconv"
	"time"

	"erp-bff/internal/audit"
	"erp-bff/internal/auth"
	"erp-bff/internal/rbac"
	"erp-bff/internal/rbac/presets"
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

// UserHandler is the account write path. It is separate from sign-in, which
// never writes to the credential store.
type UserHandler struct {
	identity IdentityService
	audit    *audit.Logger
	checker  *rbac.Checker
}

func NewUserHandler(identity IdentityService, auditLogger *audit.Logger, checker *rbac.Checker) *UserHandler {
	return &UserHandler{
		identity: identity,
		audit:    auditLogger,
		checker:  checker,
	}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	s, ok := auth.SessionFrom(c)
	if !ok {
		return respondError(c, apperrors.Unauthorized(msgAuthenticationRequired))
	}

	if err := h.checker.Authorize(s, presets.ResourceUser, presets.ActionCreate); err != nil {
		h.audit.LogFromContext(c, s, audit.ResourceTypeUser, "", audit.ActionCreate, audit.StatusDenied, 0, err.Error())
		return respondError(c, apperrors.Forbidden(msgInsufficientRoles))
	}

	var req CreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	u, err := h.identity.CreateUser(c.Request().Context(), auth.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		appErr := apperrors.From(err)
		h.audit.LogFromContext(c, s, audit.ResourceTypeUser, "", audit.ActionCreate, audit.StatusFailure, 0, appErr.Message)
		return respondError(c, appErr)
	}

	h.audit.LogFromContext(c, s, audit.ResourceTypeUser, strconv.FormatInt(u.ID, 10), audit.ActionCreate, audit.StatusSuccess, 0, "")

	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(http.StatusCreated, UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	})
}
