package aggregate

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
)

var errTrailingData = errors.New("trailing data after JSON value")

// Employee is the subset of an employee record the usage view needs.
type Employee struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Code     string `json:"employee_id"`
	Email    string `json:"email"`
}

// EmployeePage is the employee service's paginated envelope.
type EmployeePage struct {
	Items []Employee `json:"items"`
	Total int64      `json:"total"`
}

// AssetUsage is one row of the asset service's per-employee counts.
type AssetUsage struct {
	EmployeeID int64 `json:"employee_id"`
	AssetCount int64 `json:"asset_count"`
}

// EmployeeUsage is one row of the employee usage view.
type EmployeeUsage struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Email          string `json:"email"`
	AssignedAssets int64  `json:"assigned_assets"`
}

// MergeEmployeeUsage left-joins the roster against usage counts, defaulting
// to zero, and orders rows by assigned assets descending. Ties keep roster
// order.
func MergeEmployeeUsage(roster []Employee, usage []AssetUsage) []EmployeeUsage {
	counts := make(map[int64]int64, len(usage))
	for _, u := range usage {
		counts[u.EmployeeID] = u.AssetCount
	}

	rows := make([]EmployeeUsage, 0, len(roster))
	for _, emp := range roster {
		rows = append(rows, EmployeeUsage{
			ID:             emp.ID,
			Name:           emp.FullName,
			Code:           emp.Code,
			Email:          emp.Email,
			AssignedAssets: counts[emp.ID],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AssignedAssets > rows[j].AssignedAssets
	})

	return rows
}

// DashboardStats keeps the asset service's statistics object as-is, numbers
// included, so new fields pass through untouched.
type DashboardStats map[string]any

func decodeStats(body []byte, dst *DashboardStats) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// The body must be exactly one JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// MergeDashboard adds the employee head count to the asset statistics.
func MergeDashboard(stats DashboardStats, totalEmployees int64) DashboardStats {
	merged := make(DashboardStats, len(stats)+1)
	for k, v := range stats {
		merged[k] = v
	}
	merged["total_employees"] = totalEmployees
	return merged
}
