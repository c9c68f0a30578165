package presets

import "erp-bff/internal/rbac"

const (
	RoleAdmin        rbac.Role = "admin"
	RoleAssetManager rbac.Role = "asset_manager"
	RoleHRManager    rbac.Role = "hr_manager"
	RoleAccountant   rbac.Role = "accountant"
	RoleEmployee     rbac.Role = "employee"

	// DefaultRole is granted to every newly created account.
	DefaultRole = RoleEmployee

	ResourceAsset       rbac.Resource = "asset"
	ResourceAssignment  rbac.Resource = "assignment"
	ResourceMaintenance rbac.Resource = "maintenance"
	ResourceEmployee    rbac.Resource = "employee"
	ResourceInvoice     rbac.Resource = "invoice"
	ResourceUser        rbac.Resource = "user"

	ActionCreate rbac.Action = "create"
	ActionUpdate rbac.Action = "update"
	ActionDelete rbac.Action = "delete"
	ActionAssign rbac.Action = "assign"
	ActionReturn rbac.Action = "return"
)

// ERP returns the allow-lists for every mutating operation of the ERP.
// Deletes are admin-only; each manager role owns writes to its own domain.
func ERP() rbac.Config {
	return rbac.Config{
		Roles: []rbac.Role{
			RoleAdmin,
			RoleAssetManager,
			RoleHRManager,
			RoleAccountant,
			RoleEmployee,
		},
		Resources: []rbac.Resource{
			ResourceAsset,
			ResourceAssignment,
			ResourceMaintenance,
			ResourceEmployee,
			ResourceInvoice,
			ResourceUser,
		},
		Actions: []rbac.Action{
			ActionCreate,
			ActionUpdate,
			ActionDelete,
			ActionAssign,
			ActionReturn,
		},
		Capabilities: map[rbac.Role]map[rbac.Resource][]rbac.Action{
			RoleAdmin: {
				ResourceAsset:       {ActionCreate, ActionUpdate, ActionDelete},
				ResourceAssignment:  {ActionAssign, ActionReturn},
				ResourceMaintenance: {ActionCreate},
				ResourceEmployee:    {ActionCreate, ActionUpdate, ActionDelete},
				ResourceInvoice:     {ActionCreate, ActionUpdate, ActionDelete},
				ResourceUser:        {ActionCreate},
			},
			RoleAssetManager: {
				ResourceAsset:       {ActionCreate, ActionUpdate},
				ResourceAssignment:  {ActionAssign, ActionReturn},
				ResourceMaintenance: {ActionCreate},
			},
			RoleHRManager: {
				ResourceEmployee: {ActionCreate, ActionUpdate},
			},
			RoleAccountant: {
				ResourceInvoice: {ActionCreate, ActionUpdate},
			},
		},
	}
}
