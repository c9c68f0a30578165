package proxy

import (
	"net/http"

	"erp-bff/internal/rbac"
	"erp-bff/internal/rbac/presets"
)

// paginationQuery is forwarded for the assigned-assets listing.
var paginationQuery = []string{"page", "size"}

// Routes returns the browser-to-upstream table, paths relative to /api.
// Allow-lists for mutating routes come from the checker.
func Routes(checker *rbac.Checker) []Route {
	gate := func(rt Route) Route {
		rt.Roles = checker.AllowedRoles(rt.Resource, rt.Action)
		if rt.Roles == nil {
			rt.Roles = []rbac.Role{}
		}
		return rt
	}

	return []Route{
		// assets
		{Method: http.MethodGet, Path: "/assets", Service: ServiceAsset, Upstream: "/api/v1/assets", Query: QueryAll},
		{Method: http.MethodGet, Path: "/assets/assigned", Service: ServiceAsset, Upstream: "/api/v1/assets/assigned", Query: QueryAllowList, AllowedQuery: paginationQuery},
		{Method: http.MethodGet, Path: "/assets/categories", Service: ServiceAsset, Upstream: "/api/v1/categories/"},
		{Method: http.MethodGet, Path: "/assets/:id", Service: ServiceAsset, Upstream: "/api/v1/assets/:id"},
		{Method: http.MethodGet, Path: "/assets/:id/history", Service: ServiceAsset, Upstream: "/api/v1/history/:id"},
		{Method: http.MethodGet, Path: "/assets/:id/maintenance", Service: ServiceAsset, Upstream: "/api/v1/maintenance/:id"},
		gate(Route{Method: http.MethodPost, Path: "/assets", Service: ServiceAsset, Upstream: "/api/v1/assets",
			Resource: presets.ResourceAsset, Action: presets.ActionCreate}),
		gate(Route{Method: http.MethodPut, Path: "/assets/:id", Service: ServiceAsset, Upstream: "/api/v1/assets/:id",
			Resource: presets.ResourceAsset, Action: presets.ActionUpdate}),
		gate(Route{Method: http.MethodDelete, Path: "/assets/:id", Service: ServiceAsset, Upstream: "/api/v1/assets/:id",
			Resource: presets.ResourceAsset, Action: presets.ActionDelete}),
		gate(Route{Method: http.MethodPost, Path: "/assets/:id/assign", Service: ServiceAsset, Upstream: "/api/v1/assignments/:id/assign",
			Resource: presets.ResourceAssignment, Action: presets.ActionAssign, Transform: StampAssignedBy}),
		gate(Route{Method: http.MethodPost, Path: "/assets/:id/return", Service: ServiceAsset, Upstream: "/api/v1/assignments/:id/return",
			Resource: presets.ResourceAssignment, Action: presets.ActionReturn}),
		gate(Route{Method: http.MethodPost, Path: "/assets/:id/maintenance", Service: ServiceAsset, Upstream: "/api/v1/maintenance/:id",
			Resource: presets.ResourceMaintenance, Action: presets.ActionCreate, Transform: StampAssetIDFromPath}),

		// employees
		{Method: http.MethodGet, Path: "/employees", Service: ServiceEmployee, Upstream: "/api/v1/employees", Query: QueryAll},
		{Method: http.MethodGet, Path: "/employees/:id", Service: ServiceEmployee, Upstream: "/api/v1/employees/:id"},
		gate(Route{Method: http.MethodPost, Path: "/employees", Service: ServiceEmployee, Upstream: "/api/v1/employees",
			Resource: presets.ResourceEmployee, Action: presets.ActionCreate}),
		gate(Route{Method: http.MethodPut, Path: "/employees/:id", Service: ServiceEmployee, Upstream: "/api/v1/employees/:id",
			Resource: presets.ResourceEmployee, Action: presets.ActionUpdate}),
		gate(Route{Method: http.MethodDelete, Path: "/employees/:id", Service: ServiceEmployee, Upstream: "/api/v1/employees/:id",
			Resource: presets.ResourceEmployee, Action: presets.ActionDelete}),

		// invoices
		{Method: http.MethodGet, Path: "/invoices", Service: ServiceInvoice, Upstream: "/api/v1/invoices", Query: QueryAll},
		{Method: http.MethodGet, Path: "/invoices/:id", Service: ServiceInvoice, Upstream: "/api/v1/invoices/:id"},
		gate(Route{Method: http.MethodPost, Path: "/invoices", Service: ServiceInvoice, Upstream: "/api/v1/invoices",
			Resource: presets.ResourceInvoice, Action: presets.ActionCreate}),
		gate(Route{Method: http.MethodPut, Path: "/invoices/:id", Service: ServiceInvoice, Upstream: "/api/v1/invoices/:id",
			Resource: presets.ResourceInvoice, Action: presets.ActionUpdate}),
		gate(Route{Method: http.MethodDelete, Path: "/invoices/:id", Service: ServiceInvoice, Upstream: "/api/v1/invoices/:id",
			Resource: presets.ResourceInvoice, Action: presets.ActionDelete}),
	}
}
