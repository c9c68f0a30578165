package proxy

import (
	"net/url"
	"strings"

	"erp-bff/internal/domain/session"
	"erp-bff/internal/rbac"

	"github.com/labstack/echo/v4"
)

// QueryPolicy decides which inbound query parameters reach the upstream.
type QueryPolicy int

const (
	QueryNone QueryPolicy = iota
	QueryAll
	QueryAllowList
)

// BodyTransform rewrites a JSON object body before it is forwarded.
type BodyTransform func(c echo.Context, s *session.Session, body map[string]any)

// Route is one entry of the proxy table. A nil Roles list means any
// authenticated session may call it; a non-nil list gates the route.
type Route struct {
	Method   string
	Path     string
	Service  Service
	Upstream string
	Roles    []rbac.Role
	Resource rbac.Resource
	Action   rbac.Action

	Query        QueryPolicy
	AllowedQuery []string
	Transform    BodyTransform
}

// Mutating reports whether the route is gated and audited.
func (r Route) Mutating() bool {
	return r.Roles != nil
}

// Name identifies the route in logs.
func (r Route) Name() string {
	return r.Method + " " + r.Path
}

// upstreamPath substitutes path parameters into the upstream template.
func (r Route) upstreamPath(c echo.Context) string {
	segments := strings.Split(r.Upstream, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = url.PathEscape(pathParam(c, seg[1:]))
		}
	}
	return strings.Join(segments, "/")
}

// pathParam returns a path parameter in decoded form. echo routes on
// URL.RawPath when it is set (escapes such as %2F), leaving params escaped;
// otherwise params are already decoded and must not be decoded twice.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func (r Route) rawQuery(c echo.Context) string {
	switch r.Query {
	case QueryAll:
		return c.Request().URL.RawQuery
	case QueryAllowList:
		inbound := c.QueryParams()
		forwarded := url.Values{}
		for _, key := range r.AllowedQuery {
			if values, ok := inbound[key]; ok {
				forwarded[key] = values
			}
		}
		return forwarded.Encode()
	default:
		return ""
	}
}
