package proxy

import (
	"strconv"

	"erp-bff/internal/domain/session"

	"github.com/labstack/echo/v4"
)

// StampAssignedBy records the acting user as the assigner, overriding any
// value supplied by the client.
func StampAssignedBy(_ echo.Context, s *session.Session, body map[string]any) {
	if id, ok := s.NumericSubject(); ok {
		body["assigned_by"] = id
		return
	}
	body["assigned_by"] = s.Subject
}

// StampAssetIDFromPath copies the asset id from the path into the body.
func StampAssetIDFromPath(c echo.Context, _ *session.Session, body map[string]any) {
	raw := pathParam(c, paramID)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		body["asset_id"] = id
		return
	}
	body["asset_id"] = raw
}
