package rbac

// Role is a role name as carried by a Session. Roles are flat: holding one
// never implies holding another.
type Role string

// Resource is an upstream entity a mutating operation acts on.
type Resource string

// Action is a mutating operation on a resource.
type Action string
