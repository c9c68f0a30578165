package http

import (
	"context"
	"log/slog"
	stdhttp "net/http"

	"erp-bff/internal/aggregate"
	"erp-bff/internal/audit"
	"erp-bff/internal/auth"
	"erp-bff/internal/config"
	"erp-bff/internal/http/handler"
	"erp-bff/internal/http/middleware"
	"erp-bff/internal/proxy"
	"erp-bff/internal/rbac"
	"erp-bff/internal/rbac/presets"
	apperrors "erp-bff/pkg/errors"
	"erp-bff/pkg/metrics"
	"erp-bff/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	statusNotReady   = "unavailable"
	requestBodyLimit = "1M"

	msgInsufficientRole = "insufficient role"
)

// Pinger reports whether the credential store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerDependencies struct {
	Config         *config.Config
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	DB             Pinger
	Identity       handler.IdentityService
	AuthMiddleware *auth.Middleware
	CSRF           *auth.CSRF
	Checker        *rbac.Checker
	Proxy          *proxy.Handler
	Analytics      *aggregate.Handler
	AuditLogger    *audit.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every later log line carries it.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.AccessLog(deps.Logger))
	e.Use(deps.Metrics.Middleware())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	strictRateLimiter := middleware.NewStrictRateLimiter()
	sessionRateLimiter := middleware.NewGlobalRateLimiter()

	authHandler := handler.NewAuthHandler(deps.Identity, deps.AuthMiddleware, deps.CSRF, deps.AuditLogger, deps.Config.Auth.CookieSecure)
	userHandler := handler.NewUserHandler(deps.Identity, deps.AuditLogger, deps.Checker)

	e.GET("/health", healthCheck)
	e.GET("/health/ready", readinessCheck(deps.DB))
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	e.POST("/api/auth/signin", authHandler.SignIn, strictRateLimiter.Middleware())
	e.POST("/api/auth/signout", authHandler.SignOut)

	api := e.Group("/api")
	api.Use(deps.AuthMiddleware.RequireSession())
	api.Use(sessionRateLimiter.Middleware())
	api.Use(deps.CSRF.Middleware())

	api.GET("/auth/session", authHandler.Session)
	api.GET("/auth/csrf", authHandler.CSRF)
	api.POST("/users", userHandler.CreateUser)

	deps.Proxy.Register(api, proxy.Routes(deps.Checker))
	deps.Analytics.Register(api)

	if deps.Config.Server.Profiling {
		profiling.Register(e.Group(profiling.PathPrefix, deps.AuthMiddleware.RequireSession(), requireRole(presets.RoleAdmin)))
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requireRole gates operational routes that have no rbac resource of their own.
func requireRole(roles ...rbac.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, _ := auth.SessionFrom(c)
			if !rbac.IsAuthorized(s, roles) {
				appErr := apperrors.Forbidden(msgInsufficientRole)
				return c.JSON(appErr.Status(), appErr.Body())
			}
			return next(c)
		}
	}
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}

func readinessCheck(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			if err := db.Ping(c.Request().Context()); err != nil {
				return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{
					jsonKeyStatus: statusNotReady,
				})
			}
		}
		return c.JSON(stdhttp.StatusOK, map[string]string{
			jsonKeyStatus: statusOK,
		})
	}
}
