package audit

import (
	"context"
	"log/slog"
	"time"

	"erp-bff/internal/domain/session"

	"github.com/labstack/echo/v4"
)

// ResourceType is the kind of entity an audited operation touched.
type ResourceType string

const (
	ResourceTypeAsset       ResourceType = "asset"
	ResourceTypeAssignment  ResourceType = "assignment"
	ResourceTypeMaintenance ResourceType = "maintenance"
	ResourceTypeEmployee    ResourceType = "employee"
	ResourceTypeInvoice     ResourceType = "invoice"
	ResourceTypeUser        ResourceType = "user"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAssign Action = "assign"
	ActionReturn Action = "return"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// Event is one audit record.
type Event struct {
	EventType      string
	ActorID        string
	ActorEmail     string
	ResourceType   ResourceType
	ResourceID     string
	Action         Action
	Status         Status
	UpstreamStatus int
	IPAddress      string
	UserAgent      string
	RequestID      string
	ErrorMessage   string
	CreatedAt      time.Time
}

// Logger writes audit events as structured log records. Events are never
// persisted; the log pipeline is the system of record.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With(slog.String("log_type", "audit"))}
}

func (l *Logger) Log(ctx context.Context, event *Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.EventType == "" {
		event.EventType = string(event.ResourceType) + "_" + string(event.Action)
	}

	attrs := []slog.Attr{
		slog.String("event_type", event.EventType),
		slog.String("actor_id", event.ActorID),
		slog.String("actor_email", event.ActorEmail),
		slog.String("resource_type", string(event.ResourceType)),
		slog.String("action", string(event.Action)),
		slog.String("status", string(event.Status)),
		slog.String("ip_address", event.IPAddress),
		slog.String("user_agent", event.UserAgent),
		slog.String("request_id", event.RequestID),
		slog.Time("created_at", event.CreatedAt),
	}
	if event.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", event.ResourceID))
	}
	if event.UpstreamStatus != 0 {
		attrs = append(attrs, slog.Int("upstream_status", event.UpstreamStatus))
	}
	if event.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error_message", event.ErrorMessage))
	}

	level := slog.LevelInfo
	if event.Status != StatusSuccess {
		level = slog.LevelWarn
	}

	l.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogFromContext fills request and actor fields from the echo context.
func (l *Logger) LogFromContext(c echo.Context, actor *session.Session, resourceType ResourceType, resourceID string, action Action, status Status, upstreamStatus int, errMsg string) {
	event := &Event{
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Action:         action,
		Status:         status,
		UpstreamStatus: upstreamStatus,
		IPAddress:      c.RealIP(),
		UserAgent:      c.Request().UserAgent(),
		RequestID:      c.Response().Header().Get(echo.HeaderXRequestID),
		ErrorMessage:   errMsg,
	}
	if actor != nil {
		event.ActorID = actor.Subject
		event.ActorEmail = actor.Email
	}

	l.Log(c.Request().Context(), event)
}
