package rbac

import (
	"fmt"
	"slices"

	"erp-bff/internal/domain/session"
)

// IsAuthorized reports whether the session holds at least one of the
// required roles. Membership is exact string equality.
func IsAuthorized(s *session.Session, required []Role) bool {
	if s == nil {
		return false
	}
	for _, r := range required {
		if s.HasRole(string(r)) {
			return true
		}
	}
	return false
}

// Checker answers authorization questions from a validated Config
type Checker struct {
	config     Config
	validRoles map[Role]bool
	allowed    map[Resource]map[Action][]Role
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

// buildLookups inverts the capability map into per-operation allow-lists,
// ordered as the roles are declared.
func (rc *Checker) buildLookups() {
	cfg := rc.config

	rc.validRoles = make(map[Role]bool, len(cfg.Roles))
	for _, r := range cfg.Roles {
		rc.validRoles[r] = true
	}

	rc.allowed = make(map[Resource]map[Action][]Role, len(cfg.Resources))
	for _, role := range cfg.Roles {
		for res, actions := range cfg.Capabilities[role] {
			if rc.allowed[res] == nil {
				rc.allowed[res] = make(map[Action][]Role)
			}
			for _, act := range actions {
				if !slices.Contains(rc.allowed[res][act], role) {
					rc.allowed[res][act] = append(rc.allowed[res][act], role)
				}
			}
		}
	}
}

// AllowedRoles returns the allow-list for an operation. An unknown operation
// yields an empty list, which no session satisfies.
func (rc *Checker) AllowedRoles(resource Resource, action Action) []Role {
	return slices.Clone(rc.allowed[resource][action])
}

// Authorize checks whether the session may perform action on resource.
func (rc *Checker) Authorize(s *session.Session, resource Resource, action Action) error {
	if s == nil {
		return fmt.Errorf(errNilSubjectFmt, ErrDenied, ErrNilSubject)
	}
	if len(s.Roles) == 0 {
		return fmt.Errorf(errDeniedNoRolesFmt, ErrDenied)
	}
	if !IsAuthorized(s, rc.allowed[resource][action]) {
		return fmt.Errorf(errDeniedRolesCannotPerformFmt, ErrDenied, s.Roles, action, resource)
	}
	return nil
}

// ValidateRole validates a role string against configured roles
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if rc.validRoles[r] {
		return r, nil
	}
	return "", fmt.Errorf(errInvalidRoleFmt, ErrInvalidRole, role)
}
