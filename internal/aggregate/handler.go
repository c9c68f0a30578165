package aggregate

import (
	"encoding/json"
	"errors"
	"net/http"

	"erp-bff/internal/auth"
	"erp-bff/internal/domain/session"
	"erp-bff/internal/proxy"
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	employeeUsagePath = "/api/v1/analytics/employee-usage"
	dashboardPath     = "/api/v1/analytics/dashboard-stats"
	employeesPath     = "/api/v1/employees"

	// rosterQuery fetches the whole roster in one page.
	rosterQuery    = "size=1000"
	headCountQuery = "size=1"

	msgAuthenticationRequired = "authentication required"
	msgNotAnObject            = "expected a JSON object"
)

var errNotAnObject = errors.New(msgNotAnObject)

// Handler serves the analytics views. Results are recomputed per request.
type Handler struct {
	fetcher Fetcher
}

func NewHandler(fetcher Fetcher) *Handler {
	return &Handler{fetcher: fetcher}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/analytics/dashboard", h.Dashboard)
	g.GET("/analytics/employees", h.EmployeeUsage)
}

func (h *Handler) EmployeeUsage(c echo.Context) error {
	s, ok := auth.SessionFrom(c)
	if !ok {
		return respondError(c, apperrors.Unauthorized(msgAuthenticationRequired))
	}

	var usage []AssetUsage
	var roster EmployeePage

	err := FanOut(c.Request().Context(), h.fetcher,
		Branch{
			Call:   call(c, s, proxy.ServiceAsset, employeeUsagePath, ""),
			Decode: func(body []byte) error { return json.Unmarshal(body, &usage) },
		},
		Branch{
			Call:   call(c, s, proxy.ServiceEmployee, employeesPath, rosterQuery),
			Decode: func(body []byte) error { return json.Unmarshal(body, &roster) },
		},
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MergeEmployeeUsage(roster.Items, usage))
}

func (h *Handler) Dashboard(c echo.Context) error {
	s, ok := auth.SessionFrom(c)
	if !ok {
		return respondError(c, apperrors.Unauthorized(msgAuthenticationRequired))
	}

	var stats DashboardStats
	var headCount EmployeePage

	err := FanOut(c.Request().Context(), h.fetcher,
		Branch{
			Call: call(c, s, proxy.ServiceAsset, dashboardPath, ""),
			Decode: func(body []byte) error {
				if err := decodeStats(body, &stats); err != nil {
					return err
				}
				if stats == nil {
					return errNotAnObject
				}
				return nil
			},
		},
		Branch{
			Call:   call(c, s, proxy.ServiceEmployee, employeesPath, headCountQuery),
			Decode: func(body []byte) error { return json.Unmarshal(body, &headCount) },
		},
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MergeDashboard(stats, headCount.Total))
}

func call(c echo.Context, s *session.Session, service proxy.Service, path, rawQuery string) proxy.Call {
	return proxy.Call{
		Service:   service,
		Method:    http.MethodGet,
		Path:      path,
		RawQuery:  rawQuery,
		Token:     s.Token,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		Route:     c.Request().Method + " " + c.Path(),
	}
}

func respondError(c echo.Context, err error) error {
	appErr := apperrors.From(err)
	return c.JSON(appErr.Status(), appErr.Body())
}
