package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"erp-bff/internal/audit"
	"erp-bff/internal/auth"
	"erp-bff/internal/domain/session"
	"erp-bff/internal/rbac"
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

// Handler turns Route entries into echo handlers. Every route goes through
// the same steps: session, role gate, request build, outbound call, relay.
type Handler struct {
	client *Client
	audit  *audit.Logger
	logger *slog.Logger
}

func NewHandler(client *Client, auditLogger *audit.Logger, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		audit:  auditLogger,
		logger: logger,
	}
}

// Register mounts every route on g.
func (h *Handler) Register(g *echo.Group, routes []Route) {
	for _, rt := range routes {
		g.Add(rt.Method, rt.Path, h.Handle(rt))
	}
}

func (h *Handler) Handle(rt Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, ok := auth.SessionFrom(c)
		if !ok {
			return respondError(c, apperrors.Unauthorized(msgAuthenticationRequired))
		}

		if rt.Mutating() && !rbac.IsAuthorized(s, rt.Roles) {
			h.auditEvent(c, rt, s, audit.StatusDenied, 0, "")
			return respondError(c, apperrors.Forbidden(msgInsufficientRoles))
		}

		body, err := h.buildBody(c, rt, s)
		if err != nil {
			return respondError(c, err)
		}

		result, err := h.client.Do(c.Request().Context(), Call{
			Service:   rt.Service,
			Method:    rt.Method,
			Path:      rt.upstreamPath(c),
			RawQuery:  rt.rawQuery(c),
			Body:      body,
			Token:     s.Token,
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
			Route:     rt.Name(),
		})
		if err != nil {
			appErr := apperrors.From(err)
			h.auditEvent(c, rt, s, audit.StatusFailure, 0, appErr.Message)
			return respondError(c, appErr)
		}

		if !result.OK() {
			h.auditEvent(c, rt, s, audit.StatusFailure, result.Status, "")
			return relayVerbatim(c, result)
		}

		h.auditEvent(c, rt, s, audit.StatusSuccess, result.Status, "")
		return relaySuccess(c, result)
	}
}

// buildBody reads the inbound body for methods that carry one. Transformed
// routes require a JSON object; others forward the bytes untouched.
func (h *Handler) buildBody(c echo.Context, rt Route, s *session.Session) ([]byte, error) {
	switch rt.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, nil
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperrors.BadRequest(msgReadBodyFailed)
	}

	if rt.Transform == nil {
		return raw, nil
	}

	obj := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return nil, apperrors.BadRequest(msgBodyMustBeObject)
		}
	}
	rt.Transform(c, s, obj)

	return json.Marshal(obj)
}

func (h *Handler) auditEvent(c echo.Context, rt Route, s *session.Session, status audit.Status, upstreamStatus int, errMsg string) {
	if !rt.Mutating() || h.audit == nil {
		return
	}
	h.audit.LogFromContext(c, s, audit.ResourceType(rt.Resource), pathParam(c, paramID), audit.Action(rt.Action), status, upstreamStatus, errMsg)
}

// relayVerbatim passes a non-2xx upstream response through unchanged.
func relayVerbatim(c echo.Context, result *Result) error {
	if len(result.Body) == 0 {
		return c.NoContent(result.Status)
	}
	contentType := result.ContentType
	if contentType == "" {
		contentType = contentTypeJSON
	}
	return c.Blob(result.Status, contentType, result.Body)
}

// relaySuccess forwards a 2xx body after checking it is JSON.
func relaySuccess(c echo.Context, result *Result) error {
	if result.Status == http.StatusNoContent || len(result.Body) == 0 {
		return c.NoContent(result.Status)
	}
	if !json.Valid(result.Body) {
		return respondError(c, apperrors.ServiceUnavailable(msgMalformedUpstream, nil))
	}
	return c.JSONBlob(result.Status, result.Body)
}

func respondError(c echo.Context, err error) error {
	appErr := apperrors.From(err)
	return c.JSON(appErr.Status(), appErr.Body())
}
